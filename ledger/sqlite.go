package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the SQLite-backed ledger.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the ledger database at path.
//
// Foreign keys are enabled so deleting an account cascades to its trades,
// and write transactions take the database lock up front so concurrent
// reconciliation passes queue behind the busy timeout instead of failing.
func NewSQLite(path string) (*SQLite, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (l *SQLite) Close() error {
	return l.db.Close()
}

const accountColumns = `id, login_id, password, server, alias, prop_firm, account_type,
	initial_balance, balance, risk_per_trade, target_percent, investment,
	trailing_drawdown, daily_drawdown_limit, max_drawdown_limit, consistency_rule,
	active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (Account, error) {
	var a Account
	err := s.Scan(
		&a.ID, &a.LoginID, &a.Password, &a.Server, &a.Alias, &a.PropFirm, &a.AccountType,
		&a.InitialBalance, &a.Balance, &a.RiskPerTrade, &a.TargetPercent, &a.Investment,
		&a.TrailingDrawdown, &a.DailyDrawdownLimit, &a.MaxDrawdownLimit, &a.ConsistencyRule,
		&a.Active, &a.CreatedAt,
	)
	return a, err
}

// CreateAccount inserts a new account. The current balance starts at the
// initial balance and the account starts active. a.ID and a.CreatedAt are
// filled in on success.
func (l *SQLite) CreateAccount(ctx context.Context, a *Account) error {
	a.Balance = a.InitialBalance
	a.Active = true
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := l.db.ExecContext(ctx, `
		INSERT INTO accounts
		(login_id, password, server, alias, prop_firm, account_type,
		 initial_balance, balance, risk_per_trade, target_percent, investment,
		 trailing_drawdown, daily_drawdown_limit, max_drawdown_limit, consistency_rule,
		 active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.LoginID, a.Password, a.Server, a.Alias, a.PropFirm, a.AccountType,
		a.InitialBalance, a.Balance, a.RiskPerTrade, a.TargetPercent, a.Investment,
		a.TrailingDrawdown, a.DailyDrawdownLimit, a.MaxDrawdownLimit, a.ConsistencyRule,
		a.Active, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account %d: %w", a.LoginID, err)
	}

	a.ID, err = res.LastInsertId()
	return err
}

// GetAccount returns the account with the given ledger id.
func (l *SQLite) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return a, err
}

// GetAccountByLogin returns the account with the given venue login.
func (l *SQLite) GetAccountByLogin(ctx context.Context, login int64) (Account, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE login_id = ?`, login)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("login %d: %w", login, ErrNotFound)
	}
	return a, err
}

// ListAccounts returns accounts ordered by id.
func (l *SQLite) ListAccounts(ctx context.Context, activeOnly bool) ([]Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY id ASC`

	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetActive soft-activates or deactivates an account.
func (l *SQLite) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := l.db.ExecContext(ctx, `UPDATE accounts SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

// DeleteAccount removes an account together with all of its trades.
func (l *SQLite) DeleteAccount(ctx context.Context, id int64) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE account_id = ?`, id); err != nil {
		return fmt.Errorf("delete trades: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := expectOne(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return nil
}
