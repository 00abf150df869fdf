package analytics

import (
	"sort"
	"time"

	"github.com/rustyeddy/propjournal/ledger"
)

// DayOf truncates t to its calendar day, discarding the time of day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyProfit sums trade profit per calendar day of close time.
func DailyProfit(trades []ledger.Trade) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, t := range trades {
		out[DayOf(t.CloseTime)] += t.Profit
	}
	return out
}

// HighestDailyProfit is the largest value in daily, or 0 when empty.
func HighestDailyProfit(daily map[time.Time]float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	first := true
	var best float64
	for _, v := range daily {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

func sortedDays(daily map[time.Time]float64) []time.Time {
	days := make([]time.Time, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
