// Package analytics derives equity curves, calendars and performance
// statistics from ledger trades. Everything here is a pure function of its
// inputs.
package analytics

import "github.com/shopspring/decimal"

// Round2 rounds x to cents, half away from zero.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// DayLayout is the calendar-day format used in every report view.
const DayLayout = "2006-01-02"
