package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/ledger"
)

type fixture struct {
	ledger *ledger.SQLite
	svc    *Service
	a, b   ledger.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	l, err := ledger.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	a := ledger.Account{LoginID: 1, Alias: "alpha", InitialBalance: 10000, MaxDrawdownLimit: 10, ConsistencyRule: 50}
	b := ledger.Account{LoginID: 2, Alias: "beta", InitialBalance: 5000, TrailingDrawdown: true, MaxDrawdownLimit: 6}
	require.NoError(t, l.CreateAccount(ctx, &a))
	require.NoError(t, l.CreateAccount(ctx, &b))

	at := func(day, hour int) time.Time { return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC) }
	tx, err := l.Begin(ctx)
	require.NoError(t, err)
	for _, tr := range []ledger.Trade{
		{AccountID: a.ID, Ticket: 1, Symbol: "EURUSD", CloseTime: at(4, 9), Profit: 200},
		{AccountID: a.ID, Ticket: 2, Symbol: "EURUSD", CloseTime: at(4, 15), Profit: -50},
		{AccountID: a.ID, Ticket: 3, Symbol: "XAUUSD", CloseTime: at(6, 10), Profit: 100},
		{AccountID: b.ID, Ticket: 1, Symbol: "US30", CloseTime: at(5, 11), Profit: -100},
	} {
		tr := tr
		require.NoError(t, tx.InsertTrade(ctx, &tr))
	}
	require.NoError(t, tx.SetBalance(ctx, a.ID, 10250))
	require.NoError(t, tx.SetBalance(ctx, b.ID, 4900))
	require.NoError(t, tx.Commit())

	a, _ = l.GetAccount(ctx, a.ID)
	b, _ = l.GetAccount(ctx, b.ID)

	svc := NewService(l)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return &fixture{ledger: l, svc: svc, a: a, b: b}
}

func TestNewAccountView(t *testing.T) {
	t.Parallel()

	v := NewAccountView(ledger.Account{InitialBalance: 10000, Balance: 10250.456, Password: "token"})
	assert.InDelta(t, 250.46, v.TotalPL, 1e-9)
	assert.InDelta(t, 2.5, v.CurrentPercent, 1e-9)

	zero := NewAccountView(ledger.Account{Balance: 10})
	assert.Zero(t, zero.CurrentPercent)
}

func TestDashboardAllActiveAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	d, err := f.svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)

	assert.InDelta(t, 15150.0, d.TotalBalance, 1e-9)
	assert.InDelta(t, 150.0, d.TotalPL, 1e-9)
	assert.Equal(t, 2, d.ActiveAccounts)
	assert.Equal(t, 4, d.TotalTrades)
	assert.InDelta(t, 50.0, d.WinRate, 1e-9)
	assert.InDelta(t, 2.0, d.ProfitFactor, 1e-9)

	assert.Equal(t, []analytics.EquityPoint{
		{Date: "2024-03-03", Balance: 15000},
		{Date: "2024-03-04", Balance: 15150},
		{Date: "2024-03-05", Balance: 15050},
		{Date: "2024-03-06", Balance: 15150},
	}, d.BalanceCurve)

	require.Len(t, d.RecentTrades, 4)
	assert.Equal(t, int64(3), d.RecentTrades[0].Ticket, "newest first")
	assert.Equal(t, "alpha", d.RecentTrades[0].AccountAlias)

	require.Len(t, d.RiskMetrics, 2)
	assert.Equal(t, "alpha", d.RiskMetrics[0].AccountAlias)
	assert.Equal(t, "beta", d.RiskMetrics[1].AccountAlias)
	assert.True(t, d.RiskMetrics[1].IsInDrawdown)
}

func TestDashboardSingleAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	d, err := f.svc.Dashboard(context.Background(), f.a.ID)
	require.NoError(t, err)

	assert.InDelta(t, 10250.0, d.TotalBalance, 1e-9)
	assert.Equal(t, 3, d.TotalTrades)
	require.Len(t, d.RiskMetrics, 1)

	m := d.RiskMetrics[0]
	// best day 150 at a 50% rule: target 300, progress 250/300
	assert.InDelta(t, 150.0, m.HighestDailyProfit, 1e-9)
	assert.InDelta(t, 300.0, m.ProfitTargetForConsistency, 1e-9)
	assert.InDelta(t, 83.33, m.ConsistencyProgress, 1e-9)
	assert.Equal(t, "2024-03-06", d.BalanceCurve[len(d.BalanceCurve)-1].Date)
	assert.InDelta(t, 10250.0, d.BalanceCurve[len(d.BalanceCurve)-1].Balance, 1e-9)
}

func TestDashboardNoAccounts(t *testing.T) {
	t.Parallel()

	l, err := ledger.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	svc := NewService(l)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }

	d, err := svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []analytics.EquityPoint{{Date: "2024-03-20", Balance: 0}}, d.BalanceCurve)
	assert.Empty(t, d.RecentTrades)
	assert.Empty(t, d.RiskMetrics)
}

func TestDashboardExcludesInactiveAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.ledger.SetActive(context.Background(), f.b.ID, false))

	d, err := f.svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ActiveAccounts)
	assert.Equal(t, 3, d.TotalTrades)
}

func TestDashboardUnknownAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Dashboard(context.Background(), 999)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCalendar(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cal, err := f.svc.Calendar(context.Background(), 0, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 4, cal.TotalTrades)
	assert.InDelta(t, 150.0, cal.MonthTotalProfit, 1e-9)
	require.Len(t, cal.DailyStats, 3)
	assert.Equal(t, analytics.DayStat{Date: "2024-03-04", Profit: 150, TradesCount: 2, Wins: 1}, cal.DailyStats[0])

	empty, err := f.svc.Calendar(context.Background(), f.a.ID, 2024, time.April)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTrades)

	_, err = f.svc.Calendar(context.Background(), 0, 2024, time.Month(13))
	assert.Error(t, err)
}

func TestTradesByDay(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	got, err := f.svc.Trades(context.Background(), 0, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].AccountAlias)

	got, err = f.svc.Trades(context.Background(), f.b.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "US30", got[0].Symbol)
}

func TestAccountsHidesPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	views, err := f.svc.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.InDelta(t, 250.0, views[0].TotalPL, 1e-9)
	assert.InDelta(t, -100.0, views[1].TotalPL, 1e-9)
}

func TestPrinters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	d, err := f.svc.Dashboard(context.Background(), 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintDashboard(&buf, d)
	out := buf.String()
	assert.Contains(t, out, "Total Balance:   15150.00")
	assert.Contains(t, out, "Profit Factor:   2.00")
	assert.Contains(t, out, "beta")

	cal, err := f.svc.Calendar(context.Background(), 0, 2024, time.March)
	require.NoError(t, err)
	buf.Reset()
	PrintCalendar(&buf, cal)
	assert.Contains(t, buf.String(), "March 2024")
	assert.Contains(t, buf.String(), "Trades: 4")

	org := FormatTradesOrg(d.RecentTrades[:2])
	assert.Contains(t, org, "** Trade: XAUUSD")
	assert.Contains(t, org, ":TICKET: 3")
	assert.Contains(t, org, "*** Notes")
}
