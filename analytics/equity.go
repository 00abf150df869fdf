package analytics

import (
	"time"

	"github.com/rustyeddy/propjournal/ledger"
)

// EquityPoint is the closing balance of one calendar day.
type EquityPoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// EquityCurve builds the day-by-day balance series for trades starting from
// initial. The first point is the day before the first trading day at the
// initial balance. With no trades the curve is a single point for today.
//
// The running total is accumulated unrounded; only emitted values are
// rounded, so the last point equals initial plus the sum of all profits.
func EquityCurve(trades []ledger.Trade, initial float64, today time.Time) []EquityPoint {
	if len(trades) == 0 {
		return []EquityPoint{{Date: DayOf(today).Format(DayLayout), Balance: Round2(initial)}}
	}

	daily := DailyProfit(trades)
	days := sortedDays(daily)

	out := make([]EquityPoint, 0, len(days)+1)
	out = append(out, EquityPoint{
		Date:    days[0].AddDate(0, 0, -1).Format(DayLayout),
		Balance: Round2(initial),
	})

	running := initial
	for _, d := range days {
		running += daily[d]
		out = append(out, EquityPoint{Date: d.Format(DayLayout), Balance: Round2(running)})
	}
	return out
}
