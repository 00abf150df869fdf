// Package risk measures an evaluation account against its firm's drawdown
// and consistency rules.
package risk

import (
	"sort"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/ledger"
)

// Metrics is the risk status of one account.
type Metrics struct {
	AccountID    int64  `json:"account_id"`
	AccountAlias string `json:"account_alias"`

	InitialBalance float64 `json:"initial_balance"`
	CurrentBalance float64 `json:"current_balance"`
	HighWaterMark  float64 `json:"high_water_mark"`

	IsTrailing         bool    `json:"is_trailing"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
	DrawdownLimitPrice float64 `json:"drawdown_limit_price"`
	AllowableLoss      float64 `json:"allowable_loss"`
	CurrentLoss        float64 `json:"current_loss"`
	DrawdownProgress   float64 `json:"drawdown_progress"`

	ConsistencyRulePercent     float64 `json:"consistency_rule_percent"`
	HighestDailyProfit         float64 `json:"highest_daily_profit"`
	ProfitTargetForConsistency float64 `json:"profit_target_for_consistency"`
	ConsistencyProgress        float64 `json:"consistency_progress"`

	// IsInDrawdown separates "no consistency progress because the account
	// is under water" from "consistency rule inactive".
	IsInDrawdown bool `json:"is_in_drawdown"`

	Violations []Violation `json:"violations,omitempty"`
}

// Evaluate replays the account's trades from its initial balance and
// measures drawdown and consistency against its current balance.
func Evaluate(acct ledger.Account, trades []ledger.Trade) Metrics {
	sorted := make([]ledger.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CloseTime.Before(sorted[j].CloseTime) })

	hwm := HighWaterMark(acct.InitialBalance, sorted)
	highestDay := analytics.HighestDailyProfit(analytics.DailyProfit(sorted))

	m := Metrics{
		AccountID:              acct.ID,
		AccountAlias:           acct.Alias,
		InitialBalance:         acct.InitialBalance,
		CurrentBalance:         acct.Balance,
		HighWaterMark:          analytics.Round2(hwm),
		IsTrailing:             acct.TrailingDrawdown,
		MaxDrawdownPercent:     acct.MaxDrawdownLimit,
		ConsistencyRulePercent: acct.ConsistencyRule,
		HighestDailyProfit:     analytics.Round2(highestDay),
		IsInDrawdown:           acct.Balance < acct.InitialBalance,
	}

	base := acct.InitialBalance
	if acct.TrailingDrawdown {
		base = hwm
	}
	limit, budget, loss := Drawdown(base, acct.Balance, acct.MaxDrawdownLimit)
	m.DrawdownLimitPrice = analytics.Round2(limit)
	m.AllowableLoss = analytics.Round2(budget)
	m.CurrentLoss = analytics.Round2(loss)
	m.DrawdownProgress = analytics.Round2(DrawdownProgress(loss, budget))

	target, progress := Consistency(acct.InitialBalance, acct.Balance, highestDay, acct.ConsistencyRule)
	m.ProfitTargetForConsistency = analytics.Round2(target)
	m.ConsistencyProgress = analytics.Round2(progress)
	m.Violations = Check(m)
	return m
}

// HighWaterMark is the highest running balance reached while replaying
// trades (in close-time order) from initial.
func HighWaterMark(initial float64, trades []ledger.Trade) float64 {
	running, hwm := initial, initial
	for _, t := range trades {
		running += t.Profit
		if running > hwm {
			hwm = running
		}
	}
	return hwm
}

// Drawdown returns the limit price, the allowable loss budget and the
// current loss measured from base. base is the high-water mark for a
// trailing rule and the initial balance for a static one.
func Drawdown(base, current, maxPct float64) (limit, budget, loss float64) {
	budget = base * (maxPct / 100)
	return base - budget, budget, base - current
}

// DrawdownProgress is the share of the loss budget consumed, in [0, 100].
// A non-positive budget yields 0.
func DrawdownProgress(loss, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return clamp(loss/budget*100, 0, 100)
}

// Consistency returns the total profit needed for the best day to fit under
// the consistency rule, and the progress toward it in [0, 100]. Both are 0
// when the rule is off, there is no profitable day, or the account is below
// its initial balance.
func Consistency(initial, current, highestDay, rulePct float64) (target, progress float64) {
	if rulePct <= 0 || highestDay <= 0 || current < initial {
		return 0, 0
	}
	target = highestDay / (rulePct / 100)
	return target, clamp((current-initial)/target*100, 0, 100)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
