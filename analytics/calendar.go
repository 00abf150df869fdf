package analytics

import (
	"time"

	"github.com/rustyeddy/propjournal/ledger"
)

// DayStat aggregates one calendar day.
type DayStat struct {
	Date        string  `json:"date"`
	Profit      float64 `json:"profit"`
	TradesCount int     `json:"trades_count"`
	Wins        int     `json:"wins"`
}

// Calendar is the month view of daily results.
type Calendar struct {
	Year             int       `json:"year"`
	Month            int       `json:"month"`
	DailyStats       []DayStat `json:"daily_stats"`
	MonthTotalProfit float64   `json:"month_total_profit"`
	MonthWinRate     float64   `json:"month_win_rate"`
	TotalTrades      int       `json:"total_trades"`
}

// MonthBounds returns [first day of month, first day of next month) in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// BuildCalendar aggregates the trades closed in year/month. Trades outside
// the month are ignored.
func BuildCalendar(trades []ledger.Trade, year int, month time.Month) Calendar {
	start, end := MonthBounds(year, month)
	cal := Calendar{Year: year, Month: int(month), DailyStats: []DayStat{}}

	byDay := make(map[time.Time]*DayStat)
	var (
		total float64
		wins  int
	)
	for _, t := range trades {
		if t.CloseTime.Before(start) || !t.CloseTime.Before(end) {
			continue
		}
		d := DayOf(t.CloseTime)
		ds, ok := byDay[d]
		if !ok {
			ds = &DayStat{Date: d.Format(DayLayout)}
			byDay[d] = ds
		}
		ds.Profit += t.Profit
		ds.TradesCount++
		if t.Profit > 0 {
			ds.Wins++
			wins++
		}
		total += t.Profit
		cal.TotalTrades++
	}

	daily := make(map[time.Time]float64, len(byDay))
	for d := range byDay {
		daily[d] = 0
	}
	for _, d := range sortedDays(daily) {
		ds := *byDay[d]
		ds.Profit = Round2(ds.Profit)
		cal.DailyStats = append(cal.DailyStats, ds)
	}

	cal.MonthTotalProfit = Round2(total)
	if cal.TotalTrades > 0 {
		cal.MonthWinRate = Round2(float64(wins) / float64(cal.TotalTrades) * 100)
	}
	return cal
}
