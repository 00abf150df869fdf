// Package reconcile folds batches of closed trades reported by the venue
// feed into the ledger, at most once per (ticket, account).
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/vps"
)

// MessageNoAccounts is reported when there is nothing to sync.
const MessageNoAccounts = "no accounts to sync"

// Feed fetches new trades for a batch of accounts in one call.
type Feed interface {
	Sync(ctx context.Context, accounts []vps.AccountRequest) (*vps.SyncResponse, error)
}

// Decrypter recovers the plaintext venue password of an account.
type Decrypter interface {
	Decrypt(token string) string
}

// Report summarizes one reconciliation pass.
type Report struct {
	RunID           string `json:"run_id"`
	Message         string `json:"message"`
	Accounts        int    `json:"accounts"`
	NewTrades       int    `json:"new_trades_added"`
	Duplicates      int    `json:"duplicates"`
	BalancesUpdated int    `json:"balances_updated"`
	Skipped         []Skip `json:"skipped,omitempty"`
}

// Reconciler merges feed results into the ledger.
type Reconciler struct {
	ledger *ledger.SQLite
	feed   Feed
	cipher Decrypter
	logger *zap.Logger
	ids    *id.Source
	locks  *accountLocks
}

// New builds a Reconciler. A nil logger discards output.
func New(l *ledger.SQLite, feed Feed, cipher Decrypter, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		ledger: l,
		feed:   feed,
		cipher: cipher,
		logger: logger,
		ids:    id.NewSource(),
		locks:  newAccountLocks(),
	}
}

// Run performs one pass over all active accounts.
//
// The feed is called once for the whole batch; if that call fails nothing
// is written for any account. Results are then committed one account at a
// time, so an error on a later account leaves earlier accounts' trades in
// place and is returned alongside the partial report.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: r.ids.New()}
	log := r.logger.With(zap.String("run_id", rep.RunID))

	accounts, err := r.ledger.ListAccounts(ctx, true)
	if err != nil {
		return rep, fmt.Errorf("list accounts: %w", err)
	}
	rep.Accounts = len(accounts)
	if len(accounts) == 0 {
		rep.Message = MessageNoAccounts
		log.Info(MessageNoAccounts)
		return rep, nil
	}

	items, err := r.requests(ctx, accounts)
	if err != nil {
		return rep, err
	}
	for _, it := range items {
		log.Debug("sync request", zap.Object("account", it))
	}

	resp, err := r.feed.Sync(ctx, items)
	if err != nil {
		log.Warn("feed sync failed", zap.Error(err))
		return rep, fmt.Errorf("fetch batch: %w", err)
	}

	byLogin := make(map[int64]ledger.Account, len(accounts))
	for _, a := range accounts {
		byLogin[a.LoginID] = a
	}

	for _, res := range resp.Data {
		acct, ok := byLogin[res.Account]
		if !ok {
			rep.Skipped = append(rep.Skipped, Skip{Login: res.Account, Reason: ReasonUnknownAccount})
			continue
		}
		if err := r.merge(ctx, acct, res, &rep); err != nil {
			log.Error("merge failed", zap.Int64("login", acct.LoginID), zap.Error(err))
			return rep, fmt.Errorf("merge login %d: %w", acct.LoginID, err)
		}
	}

	for _, s := range rep.Skipped {
		log.Debug("skipped", zap.Int64("login", s.Login), zap.Int64("ticket", s.Ticket), zap.String("reason", string(s.Reason)))
	}
	rep.Message = "success"
	log.Info("sync complete",
		zap.Int("accounts", rep.Accounts),
		zap.Int("new_trades", rep.NewTrades),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("balances_updated", rep.BalancesUpdated),
		zap.Int("skipped", len(rep.Skipped)),
	)
	return rep, nil
}

func (r *Reconciler) requests(ctx context.Context, accounts []ledger.Account) ([]vps.AccountRequest, error) {
	items := make([]vps.AccountRequest, 0, len(accounts))
	for _, a := range accounts {
		wm, err := r.ledger.Watermark(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, vps.AccountRequest{
			Login:        a.LoginID,
			Password:     r.cipher.Decrypt(a.Password),
			Server:       a.Server,
			LastSyncDate: wm.Format(vps.LastSyncLayout),
		})
	}
	return items, nil
}

// merge applies one account's result inside a single transaction.
func (r *Reconciler) merge(ctx context.Context, acct ledger.Account, res vps.AccountResult, rep *Report) error {
	unlock := r.locks.lock(acct.ID)
	defer unlock()

	tx, err := r.ledger.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	balanceUpdated := false
	if res.OK() && res.Balance != nil {
		if err := tx.SetBalance(ctx, acct.ID, *res.Balance); err != nil {
			return fmt.Errorf("set balance: %w", err)
		}
		balanceUpdated = true
	}

	var added, dups int
	var skips []Skip
	for _, raw := range res.NewTrades {
		out := ParseTrade(acct.ID, raw)
		if !out.Parsed() {
			skips = append(skips, Skip{Login: acct.LoginID, Ticket: out.Trade.Ticket, Reason: out.Reason})
			continue
		}

		exists, err := tx.TradeExists(ctx, acct.ID, out.Trade.Ticket)
		if err != nil {
			return fmt.Errorf("lookup ticket %d: %w", out.Trade.Ticket, err)
		}
		if exists {
			dups++
			continue
		}

		tr := out.Trade
		if err := tx.InsertTrade(ctx, &tr); err != nil {
			if errors.Is(err, ledger.ErrDuplicateTrade) {
				dups++
				continue
			}
			return err
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	rep.NewTrades += added
	rep.Duplicates += dups
	rep.Skipped = append(rep.Skipped, skips...)
	if balanceUpdated {
		rep.BalancesUpdated++
	}
	return nil
}
