package vps

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LastSyncLayout is the watermark format the feed expects.
const LastSyncLayout = "2006-01-02 15:04:05"

// StatusSuccess marks a per-account result whose balance can be trusted.
const StatusSuccess = "success"

// SyncRequest is the batched body sent to the feed.
type SyncRequest struct {
	Accounts []AccountRequest `json:"accounts"`
}

// AccountRequest asks the feed for one account's trades closed after
// LastSyncDate. Password is plaintext and only lives for the request.
type AccountRequest struct {
	Login        int64  `json:"login"`
	Password     string `json:"password"`
	Server       string `json:"server"`
	LastSyncDate string `json:"last_sync_date"`
}

// String never includes the password.
func (r AccountRequest) String() string {
	return fmt.Sprintf("login=%d server=%s since=%q", r.Login, r.Server, r.LastSyncDate)
}

// MarshalLogObject keeps the credential out of structured logs.
func (r AccountRequest) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("login", r.Login)
	enc.AddString("server", r.Server)
	enc.AddString("last_sync_date", r.LastSyncDate)
	enc.AddString("password", "[redacted]")
	return nil
}

// SyncResponse is the feed's batched reply.
type SyncResponse struct {
	Data []AccountResult `json:"data"`
}

// AccountResult carries one account's balance and newly closed trades.
type AccountResult struct {
	Account   int64      `json:"account"`
	Status    string     `json:"status"`
	Balance   *float64   `json:"balance,omitempty"`
	NewTrades []RawTrade `json:"new_trades"`
}

// OK reports whether the feed marked the result successful.
func (r AccountResult) OK() bool {
	return r.Status == StatusSuccess
}

// RawTrade is a closed trade as the feed reports it. Pointer fields are
// the ones whose absence must be detectable.
type RawTrade struct {
	Ticket     *int64   `json:"ticket"`
	PositionID *int64   `json:"position_id,omitempty"`
	Symbol     string   `json:"symbol"`
	Type       string   `json:"type"`
	TradeDate  string   `json:"trade_date"`
	EntryTime  string   `json:"entry_time,omitempty"`
	ExitTime   string   `json:"exit_time"`
	Profit     *float64 `json:"profit"`
	Commission float64  `json:"commission"`
	Swap       float64  `json:"swap"`
	Comment    string   `json:"comment,omitempty"`
}
