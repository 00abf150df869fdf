package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Watermark returns the latest close time already stored for the account,
// or WatermarkEpoch when the account has no trades.
func (l *SQLite) Watermark(ctx context.Context, accountID int64) (time.Time, error) {
	var ts time.Time
	err := l.db.QueryRowContext(ctx, `
		SELECT close_time FROM trades
		WHERE account_id = ?
		ORDER BY close_time DESC
		LIMIT 1`, accountID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return WatermarkEpoch, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("watermark for account %d: %w", accountID, err)
	}
	return ts.UTC(), nil
}

// CountTrades returns the number of trades stored for the account.
func (l *SQLite) CountTrades(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

const tradeColumns = `t.id, t.account_id, t.ticket, t.position_id, t.symbol, t.type,
	t.open_time, t.close_time, t.profit, t.commission, t.swap, t.comment,
	t.strategy, t.emotion, t.mistake, t.notes, a.alias`

// ListTrades returns trades matching f, ascending by close time unless
// f.Newest is set.
func (l *SQLite) ListTrades(ctx context.Context, f TradeFilter) ([]Trade, error) {
	var (
		where []string
		args  []any
	)
	if len(f.AccountIDs) > 0 {
		marks := make([]string, len(f.AccountIDs))
		for i, id := range f.AccountIDs {
			marks[i] = "?"
			args = append(args, id)
		}
		where = append(where, "t.account_id IN ("+strings.Join(marks, ",")+")")
	}
	if f.ActiveOnly {
		where = append(where, "a.active = 1")
	}
	if !f.From.IsZero() {
		where = append(where, "t.close_time >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "t.close_time < ?")
		args = append(args, f.To.UTC())
	}

	var q strings.Builder
	q.WriteString(`SELECT ` + tradeColumns + ` FROM trades t JOIN accounts a ON a.id = t.account_id`)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Newest {
		q.WriteString(" ORDER BY t.close_time DESC, t.id DESC")
	} else {
		q.WriteString(" ORDER BY t.close_time ASC, t.id ASC")
	}
	if f.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := l.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTrade(s scanner) (Trade, error) {
	var (
		t                                 Trade
		positionID                        sql.NullInt64
		openTime                          sql.NullTime
		comment, strategy, emotion, mistk sql.NullString
		notes                             sql.NullString
	)
	err := s.Scan(
		&t.ID, &t.AccountID, &t.Ticket, &positionID, &t.Symbol, &t.Type,
		&openTime, &t.CloseTime, &t.Profit, &t.Commission, &t.Swap, &comment,
		&strategy, &emotion, &mistk, &notes, &t.AccountAlias,
	)
	if err != nil {
		return Trade{}, err
	}

	if positionID.Valid {
		t.PositionID = &positionID.Int64
	}
	if openTime.Valid {
		ot := openTime.Time.UTC()
		t.OpenTime = &ot
	}
	t.CloseTime = t.CloseTime.UTC()
	t.Comment = comment.String
	t.Strategy = strategy.String
	t.Emotion = emotion.String
	t.Mistake = mistk.String
	t.Notes = notes.String
	return t, nil
}

// Tx scopes ledger writes for a single account. Reconciliation commits one
// Tx per account so a later account cannot roll back an earlier one.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (l *SQLite) Begin(ctx context.Context) (*Tx, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// TradeExists reports whether (ticket, account) is already stored.
func (t *Tx) TradeExists(ctx context.Context, accountID, ticket int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM trades WHERE ticket = ? AND account_id = ? LIMIT 1`,
		ticket, accountID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertTrade stores a new trade and sets tr.ID. A (ticket, account)
// collision is reported as ErrDuplicateTrade.
func (t *Tx) InsertTrade(ctx context.Context, tr *Trade) error {
	var openTime any
	if tr.OpenTime != nil {
		openTime = tr.OpenTime.UTC()
	}
	var comment any
	if tr.Comment != "" {
		comment = tr.Comment
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO trades
		(account_id, ticket, position_id, symbol, type, open_time, close_time,
		 profit, commission, swap, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.AccountID, tr.Ticket, tr.PositionID, tr.Symbol, tr.Type, openTime, tr.CloseTime.UTC(),
		tr.Profit, tr.Commission, tr.Swap, comment,
	)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("ticket %d account %d: %w", tr.Ticket, tr.AccountID, ErrDuplicateTrade)
		}
		return fmt.Errorf("insert ticket %d: %w", tr.Ticket, err)
	}

	tr.ID, err = res.LastInsertId()
	return err
}

// SetBalance overwrites the account's current balance with a venue-reported
// figure.
func (t *Tx) SetBalance(ctx context.Context, accountID int64, balance float64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance, accountID)
	return err
}
