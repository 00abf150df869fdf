package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/propjournal/analytics"
)

const rule = "--------------------------------------------------"

// PrintDashboard writes a plain-text dashboard.
func PrintDashboard(w io.Writer, d Dashboard) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Dashboard")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Total Balance:   %.2f\n", d.TotalBalance)
	fmt.Fprintf(w, "Net P/L:         %+.2f\n", d.TotalPL)
	fmt.Fprintf(w, "Active Accounts: %d\n", d.ActiveAccounts)
	fmt.Fprintf(w, "Win Rate:        %.2f%%\n", d.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:          %d (%d wins, %d losses)\n", d.TotalTrades, d.Wins, d.Losses)
	fmt.Fprintf(w, "Best / Worst:    %.2f / %.2f\n", d.BestTrade, d.WorstTrade)
	fmt.Fprintf(w, "Avg Win / Loss:  %.2f / %.2f\n", d.AverageWin, d.AverageLoss)
	fmt.Fprintf(w, "Best Day:        %.2f\n", d.HighestProfitableDay)
	fmt.Fprintf(w, "Profit Factor:   %.2f\n", d.ProfitFactor)
	fmt.Fprintf(w, "Avg RRR:         %.2f\n", d.AverageRRR)
	fmt.Fprintf(w, "Sharpe (trade):  %.2f\n", d.SharpeRatio)
	fmt.Fprintf(w, "Runs Z-Score:    %.2f\n", d.ZScore)

	if len(d.RiskMetrics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Risk")
		fmt.Fprintln(w, rule)
		for _, m := range d.RiskMetrics {
			mode := "static"
			if m.IsTrailing {
				mode = "trailing"
			}
			fmt.Fprintf(w, "%s\n", m.AccountAlias)
			fmt.Fprintf(w, "  Balance:       %.2f (limit %.2f, %s %.1f%%)\n",
				m.CurrentBalance, m.DrawdownLimitPrice, mode, m.MaxDrawdownPercent)
			fmt.Fprintf(w, "  Drawdown used: %.2f%%\n", m.DrawdownProgress)
			switch {
			case m.IsInDrawdown:
				fmt.Fprintf(w, "  Consistency:   below initial balance\n")
			case m.ConsistencyRulePercent > 0:
				fmt.Fprintf(w, "  Consistency:   %.2f%% of %.2f (%.0f%% rule, best day %.2f)\n",
					m.ConsistencyProgress, m.ProfitTargetForConsistency, m.ConsistencyRulePercent, m.HighestDailyProfit)
			}
		}
	}

	if len(d.BalanceCurve) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Balance Curve")
		fmt.Fprintln(w, rule)
		for _, p := range d.BalanceCurve {
			fmt.Fprintf(w, "%s  %12.2f\n", p.Date, p.Balance)
		}
	}

	if len(d.RecentTrades) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Trades")
		fmt.Fprintln(w, rule)
		for _, t := range d.RecentTrades {
			fmt.Fprintf(w, "%s  %-10s %-8s %-5s %10.2f\n",
				t.CloseTime.Format("2006-01-02 15:04"), t.AccountAlias, t.Symbol, t.Type, t.Profit)
		}
	}
	fmt.Fprintln(w)
}

// PrintCalendar writes the month view as one line per trading day.
func PrintCalendar(w io.Writer, c analytics.Calendar) {
	fmt.Fprintf(w, "%s %d\n", time.Month(c.Month), c.Year)
	fmt.Fprintln(w, rule)
	for _, d := range c.DailyStats {
		fmt.Fprintf(w, "%s  %10.2f  %3d trades  %3d wins\n", d.Date, d.Profit, d.TradesCount, d.Wins)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total: %.2f  Trades: %d  Win Rate: %.2f%%\n", c.MonthTotalProfit, c.TotalTrades, c.MonthWinRate)
}

// FormatTradeOrg renders a trade as an Org-mode block for pasting into a
// trading journal. Journal fields become sections.
func FormatTradeOrg(t TradeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (#%d)\n", t.Symbol, t.Type, t.Ticket)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TICKET: %d\n", t.Ticket)
	fmt.Fprintf(&b, ":ACCOUNT: %s\n", t.AccountAlias)
	if t.OpenTime != nil {
		fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.OpenTime.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":PROFIT: %.2f\n", t.Profit)
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":SWAP: %.2f\n", t.Swap)
	if t.Comment != "" {
		fmt.Fprintf(&b, ":COMMENT: %s\n", t.Comment)
	}
	b.WriteString(":END:\n\n")

	section := func(title, body string) {
		fmt.Fprintf(&b, "*** %s\n- %s\n\n", title, body)
	}
	section("Strategy", t.Strategy)
	section("Emotion", t.Emotion)
	section("Mistake", t.Mistake)
	section("Notes", t.Notes)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeView) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}
