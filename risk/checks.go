package risk

import "fmt"

// Violation codes.
const (
	CodeMaxDrawdown = "MAX_DRAWDOWN"
	CodeConsistency = "CONSISTENCY"
)

// Violation is one firm rule the account currently fails.
type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Check lists the rules m fails. A profitable account whose best day is
// still too large a share of its profit fails consistency until the
// profit reaches the consistency target.
func Check(m Metrics) []Violation {
	var out []Violation
	if m.MaxDrawdownPercent > 0 && m.CurrentBalance <= m.DrawdownLimitPrice {
		out = append(out, Violation{
			Code: CodeMaxDrawdown,
			Msg:  fmt.Sprintf("balance %.2f at or below limit %.2f", m.CurrentBalance, m.DrawdownLimitPrice),
		})
	}
	if m.ProfitTargetForConsistency > 0 && m.ConsistencyProgress < 100 {
		out = append(out, Violation{
			Code: CodeConsistency,
			Msg: fmt.Sprintf("best day %.2f exceeds %.0f%% of profit %.2f",
				m.HighestDailyProfit, m.ConsistencyRulePercent, m.CurrentBalance-m.InitialBalance),
		})
	}
	return out
}
