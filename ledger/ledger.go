// Package ledger is the authoritative store of evaluation accounts and the
// closed trades reconciled into them.
package ledger

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an account lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTrade is returned by InsertTrade when (ticket, account)
	// already exists.
	ErrDuplicateTrade = errors.New("duplicate trade")
)

// WatermarkEpoch is the watermark of an account that has no trades yet, far
// enough back that the venue returns its whole history.
var WatermarkEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Account is a prop-firm evaluation account.
type Account struct {
	ID      int64
	LoginID int64

	// Password holds the encrypted venue credential, never plaintext.
	Password string
	Server   string

	Alias       string
	PropFirm    string
	AccountType string // Phase 1, Phase 2, Funded

	InitialBalance float64
	Balance        float64
	RiskPerTrade   float64
	TargetPercent  float64
	Investment     float64

	// Drawdown and consistency rules, percentages (5.0 == 5%).
	TrailingDrawdown   bool
	DailyDrawdownLimit float64
	MaxDrawdownLimit   float64
	ConsistencyRule    float64

	Active    bool
	CreatedAt time.Time
}

// Trade is one closed position as reported by the venue.
type Trade struct {
	ID         int64
	AccountID  int64
	Ticket     int64
	PositionID *int64
	Symbol     string
	Type       string

	OpenTime  *time.Time
	CloseTime time.Time

	Profit     float64
	Commission float64
	Swap       float64
	Comment    string

	// Journal fields are edited by the operator, never by reconciliation.
	Strategy string
	Emotion  string
	Mistake  string
	Notes    string

	// AccountAlias is filled in by listings that join the owning account.
	AccountAlias string
}

// TradeFilter narrows ListTrades. Zero values mean "no restriction".
type TradeFilter struct {
	AccountIDs []int64
	ActiveOnly bool

	// Close time window, [From, To).
	From time.Time
	To   time.Time

	// Newest reverses the default ascending close-time order.
	Newest bool
	Limit  int
}
