// Package report assembles the read views served to operators: account
// summaries, trade listings, the dashboard and the monthly calendar.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/risk"
)

// RecentTradesLimit is how many trades the dashboard lists.
const RecentTradesLimit = 10

// Service reads the ledger and derives report views. It never writes.
type Service struct {
	ledger *ledger.SQLite
	now    func() time.Time
}

func NewService(l *ledger.SQLite) *Service {
	return &Service{ledger: l, now: time.Now}
}

// AccountView is an account without its credential, plus derived P/L.
type AccountView struct {
	ID                 int64   `json:"id"`
	LoginID            int64   `json:"login_id"`
	Server             string  `json:"server"`
	Alias              string  `json:"alias"`
	PropFirm           string  `json:"prop_firm"`
	AccountType        string  `json:"account_type"`
	Active             bool    `json:"active"`
	InitialBalance     float64 `json:"initial_balance"`
	Balance            float64 `json:"balance"`
	RiskPerTrade       float64 `json:"risk_per_trade"`
	TargetPercent      float64 `json:"target_percent"`
	Investment         float64 `json:"investment"`
	TrailingDrawdown   bool    `json:"trailing_drawdown"`
	DailyDrawdownLimit float64 `json:"daily_drawdown_limit"`
	MaxDrawdownLimit   float64 `json:"max_drawdown_limit"`
	ConsistencyRule    float64 `json:"consistency_rule"`
	TotalPL            float64 `json:"total_pl"`
	CurrentPercent     float64 `json:"current_percent"`
}

// NewAccountView derives the view of a.
func NewAccountView(a ledger.Account) AccountView {
	v := AccountView{
		ID:                 a.ID,
		LoginID:            a.LoginID,
		Server:             a.Server,
		Alias:              a.Alias,
		PropFirm:           a.PropFirm,
		AccountType:        a.AccountType,
		Active:             a.Active,
		InitialBalance:     a.InitialBalance,
		Balance:            a.Balance,
		RiskPerTrade:       a.RiskPerTrade,
		TargetPercent:      a.TargetPercent,
		Investment:         a.Investment,
		TrailingDrawdown:   a.TrailingDrawdown,
		DailyDrawdownLimit: a.DailyDrawdownLimit,
		MaxDrawdownLimit:   a.MaxDrawdownLimit,
		ConsistencyRule:    a.ConsistencyRule,
		TotalPL:            analytics.Round2(a.Balance - a.InitialBalance),
	}
	if a.InitialBalance != 0 {
		v.CurrentPercent = analytics.Round2((a.Balance - a.InitialBalance) / a.InitialBalance * 100)
	}
	return v
}

// TradeView is the listing shape of a trade.
type TradeView struct {
	ID           int64      `json:"id"`
	AccountID    int64      `json:"account_id"`
	AccountAlias string     `json:"account_alias"`
	Ticket       int64      `json:"ticket"`
	Symbol       string     `json:"symbol"`
	Type         string     `json:"type"`
	OpenTime     *time.Time `json:"open_time,omitempty"`
	CloseTime    time.Time  `json:"close_time"`
	Profit       float64    `json:"profit"`
	Commission   float64    `json:"commission"`
	Swap         float64    `json:"swap"`
	Comment      string     `json:"comment,omitempty"`
	Strategy     string     `json:"strategy,omitempty"`
	Emotion      string     `json:"emotion,omitempty"`
	Mistake      string     `json:"mistake,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func newTradeView(t ledger.Trade) TradeView {
	return TradeView{
		ID:           t.ID,
		AccountID:    t.AccountID,
		AccountAlias: t.AccountAlias,
		Ticket:       t.Ticket,
		Symbol:       t.Symbol,
		Type:         t.Type,
		OpenTime:     t.OpenTime,
		CloseTime:    t.CloseTime,
		Profit:       t.Profit,
		Commission:   t.Commission,
		Swap:         t.Swap,
		Comment:      t.Comment,
		Strategy:     t.Strategy,
		Emotion:      t.Emotion,
		Mistake:      t.Mistake,
		Notes:        t.Notes,
	}
}

// Dashboard is the overview of one account or of all active accounts.
type Dashboard struct {
	TotalBalance   float64                 `json:"total_balance"`
	TotalPL        float64                 `json:"total_pl"`
	ActiveAccounts int                     `json:"active_accounts"`
	RecentTrades   []TradeView             `json:"recent_trades"`
	BalanceCurve   []analytics.EquityPoint `json:"balance_curve"`
	analytics.Stats
	RiskMetrics []risk.Metrics `json:"risk_metrics"`
}

// Accounts lists every account, active or not.
func (s *Service) Accounts(ctx context.Context) ([]AccountView, error) {
	accts, err := s.ledger.ListAccounts(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]AccountView, 0, len(accts))
	for _, a := range accts {
		out = append(out, NewAccountView(a))
	}
	return out, nil
}

// Trades lists trades for accountID (0 for all accounts), optionally
// limited to the calendar day of day (zero for no limit).
func (s *Service) Trades(ctx context.Context, accountID int64, day time.Time) ([]TradeView, error) {
	f := ledger.TradeFilter{}
	if accountID != 0 {
		f.AccountIDs = []int64{accountID}
	}
	if !day.IsZero() {
		f.From = analytics.DayOf(day)
		f.To = f.From.AddDate(0, 0, 1)
	}
	trades, err := s.ledger.ListTrades(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]TradeView, 0, len(trades))
	for _, t := range trades {
		out = append(out, newTradeView(t))
	}
	return out, nil
}

// scope resolves accountID to the accounts a view covers: the single
// account when set, every active account otherwise.
func (s *Service) scope(ctx context.Context, accountID int64) ([]ledger.Account, error) {
	if accountID == 0 {
		return s.ledger.ListAccounts(ctx, true)
	}
	a, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return []ledger.Account{a}, nil
}

func (s *Service) scopedTrades(ctx context.Context, accts []ledger.Account, f ledger.TradeFilter) ([]ledger.Trade, error) {
	if len(accts) == 0 {
		return nil, nil
	}
	for _, a := range accts {
		f.AccountIDs = append(f.AccountIDs, a.ID)
	}
	return s.ledger.ListTrades(ctx, f)
}

// Dashboard builds the overview for accountID (0 for all active accounts).
func (s *Service) Dashboard(ctx context.Context, accountID int64) (Dashboard, error) {
	accts, err := s.scope(ctx, accountID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard scope: %w", err)
	}

	trades, err := s.scopedTrades(ctx, accts, ledger.TradeFilter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard trades: %w", err)
	}

	byAccount := make(map[int64][]ledger.Trade, len(accts))
	for _, t := range trades {
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	d := Dashboard{
		RecentTrades: []TradeView{},
		RiskMetrics:  make([]risk.Metrics, 0, len(accts)),
	}
	var balance, initial float64
	for _, a := range accts {
		balance += a.Balance
		initial += a.InitialBalance
		if a.Active {
			d.ActiveAccounts++
		}
		d.RiskMetrics = append(d.RiskMetrics, risk.Evaluate(a, byAccount[a.ID]))
	}
	d.TotalBalance = analytics.Round2(balance)
	d.TotalPL = analytics.Round2(balance - initial)

	d.Stats = analytics.ComputeStats(trades)
	d.BalanceCurve = analytics.EquityCurve(trades, initial, s.now())

	for i := len(trades) - 1; i >= 0 && len(d.RecentTrades) < RecentTradesLimit; i-- {
		d.RecentTrades = append(d.RecentTrades, newTradeView(trades[i]))
	}
	return d, nil
}

// Calendar builds the month view for accountID (0 for all active accounts).
func (s *Service) Calendar(ctx context.Context, accountID int64, year int, month time.Month) (analytics.Calendar, error) {
	if month < time.January || month > time.December {
		return analytics.Calendar{}, fmt.Errorf("invalid month %d", month)
	}
	accts, err := s.scope(ctx, accountID)
	if err != nil {
		return analytics.Calendar{}, fmt.Errorf("calendar scope: %w", err)
	}

	from, to := analytics.MonthBounds(year, month)
	trades, err := s.scopedTrades(ctx, accts, ledger.TradeFilter{From: from, To: to})
	if err != nil {
		return analytics.Calendar{}, fmt.Errorf("calendar trades: %w", err)
	}
	return analytics.BuildCalendar(trades, year, month), nil
}
