package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/reconcile"
	"github.com/rustyeddy/propjournal/report"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSyncer struct {
	rep   reconcile.Report
	err   error
	calls int
}

func (f *fakeSyncer) Run(ctx context.Context) (reconcile.Report, error) {
	f.calls++
	return f.rep, f.err
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func newTestEngine(t *testing.T, syncer Syncer) (*gin.Engine, ledger.Account) {
	t.Helper()
	ctx := context.Background()

	l, err := ledger.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	acct := ledger.Account{LoginID: 5001, Alias: "eval", Password: "gAAAA-token", InitialBalance: 10000, MaxDrawdownLimit: 10}
	require.NoError(t, l.CreateAccount(ctx, &acct))

	tx, err := l.Begin(ctx)
	require.NoError(t, err)
	for i, p := range []float64{120, -40} {
		tr := ledger.Trade{
			AccountID: acct.ID,
			Ticket:    int64(i + 1),
			Symbol:    "EURUSD",
			CloseTime: time.Date(2024, 5, 2+i, 10, 0, 0, 0, time.UTC),
			Profit:    p,
		}
		require.NoError(t, tx.InsertTrade(ctx, &tr))
	}
	require.NoError(t, tx.SetBalance(ctx, acct.ID, 10080))
	require.NoError(t, tx.Commit())

	h := &Handler{
		Reports: report.NewService(l),
		Syncer:  syncer,
		now:     func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) },
	}
	return NewEngine(h), acct
}

func do(t *testing.T, engine *gin.Engine, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAccountsOmitsPassword(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	w, env := do(t, engine, http.MethodGet, "/accounts")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotContains(t, w.Body.String(), "gAAAA-token")

	var items []report.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.InDelta(t, 80.0, items[0].TotalPL, 1e-9)
	assert.InDelta(t, 0.8, items[0].CurrentPercent, 1e-9)
}

func TestTrades(t *testing.T) {
	engine, acct := newTestEngine(t, nil)

	_, env := do(t, engine, http.MethodGet, "/trades")
	var all []report.TradeView
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	_, env = do(t, engine, http.MethodGet, "/trades?date=2024-05-03&account_id="+itoa(acct.ID))
	var day []report.TradeView
	require.NoError(t, json.Unmarshal(env.Data, &day))
	require.Len(t, day, 1)
	assert.Equal(t, int64(2), day[0].Ticket)

	w, env := do(t, engine, http.MethodGet, "/trades?date=05/03/2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)

	w, _ = do(t, engine, http.MethodGet, "/trades?account_id=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard(t *testing.T) {
	engine, acct := newTestEngine(t, nil)

	w, env := do(t, engine, http.MethodGet, "/dashboard?account_id="+itoa(acct.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var d report.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 2, d.TotalTrades)
	assert.InDelta(t, 50.0, d.WinRate, 1e-9)
	assert.InDelta(t, 3.0, d.ProfitFactor, 1e-9)
	require.Len(t, d.RiskMetrics, 1)
	assert.InDelta(t, 9000.0, d.RiskMetrics[0].DrawdownLimitPrice, 1e-9)

	w, _ = do(t, engine, http.MethodGet, "/dashboard?account_id=999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendar(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	_, env := do(t, engine, http.MethodGet, "/calendar?year=2024&month=5")
	var cal struct {
		Year             int     `json:"year"`
		Month            int     `json:"month"`
		MonthTotalProfit float64 `json:"month_total_profit"`
		TotalTrades      int     `json:"total_trades"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 5, cal.Month)
	assert.Equal(t, 2, cal.TotalTrades)
	assert.InDelta(t, 80.0, cal.MonthTotalProfit, 1e-9)

	// defaults to the current month
	_, env = do(t, engine, http.MethodGet, "/calendar")
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	assert.Equal(t, 5, cal.Month)

	w, _ := do(t, engine, http.MethodGet, "/calendar?month=13")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSync(t *testing.T) {
	s := &fakeSyncer{rep: reconcile.Report{Message: "success", NewTrades: 3}}
	engine, _ := newTestEngine(t, s)

	w, env := do(t, engine, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.calls)

	var rep reconcile.Report
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, 3, rep.NewTrades)
}

func TestSyncFailure(t *testing.T) {
	s := &fakeSyncer{err: errors.New("fetch batch: connection refused")}
	engine, _ := newTestEngine(t, s)

	w, env := do(t, engine, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, env.Message, "connection refused")
}

func TestSyncUnavailable(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	w, _ := do(t, engine, http.MethodPost, "/sync")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
