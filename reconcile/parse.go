package reconcile

import (
	"time"

	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/vps"
)

// Reason explains why a feed record did not become a ledger trade.
type Reason string

const (
	ReasonMissingTicket  Reason = "missing ticket"
	ReasonMissingProfit  Reason = "missing profit"
	ReasonBadCloseTime   Reason = "unparseable close time"
	ReasonUnknownAccount Reason = "unknown account"
	ReasonDuplicate      Reason = "already ingested"
)

// Skip records one dropped feed record.
type Skip struct {
	Login  int64  `json:"login"`
	Ticket int64  `json:"ticket,omitempty"`
	Reason Reason `json:"reason"`
}

// Outcome is the result of parsing one raw feed trade: either a trade
// ready to insert or the reason it was skipped.
type Outcome struct {
	Trade  ledger.Trade
	Reason Reason
}

// Parsed reports whether the outcome carries a trade.
func (o Outcome) Parsed() bool {
	return o.Reason == ""
}

func skipped(r Reason) Outcome {
	return Outcome{Reason: r}
}

// ParseTrade converts a feed record for accountID. The close time is
// trade_date plus exit_time; a record whose close time cannot be built is
// skipped. An unparseable entry time only drops the open time.
func ParseTrade(accountID int64, raw vps.RawTrade) Outcome {
	if raw.Ticket == nil {
		return skipped(ReasonMissingTicket)
	}
	if raw.Profit == nil {
		return Outcome{Trade: ledger.Trade{Ticket: *raw.Ticket}, Reason: ReasonMissingProfit}
	}

	closeTime, err := joinDateTime(raw.TradeDate, raw.ExitTime)
	if err != nil {
		return Outcome{Trade: ledger.Trade{Ticket: *raw.Ticket}, Reason: ReasonBadCloseTime}
	}

	tr := ledger.Trade{
		AccountID:  accountID,
		Ticket:     *raw.Ticket,
		PositionID: raw.PositionID,
		Symbol:     raw.Symbol,
		Type:       raw.Type,
		CloseTime:  closeTime,
		Profit:     *raw.Profit,
		Commission: raw.Commission,
		Swap:       raw.Swap,
		Comment:    raw.Comment,
	}
	if raw.EntryTime != "" {
		if openTime, err := joinDateTime(raw.TradeDate, raw.EntryTime); err == nil {
			tr.OpenTime = &openTime
		}
	}
	return Outcome{Trade: tr}
}

func joinDateTime(date, clock string) (time.Time, error) {
	return time.Parse(vps.LastSyncLayout, date+" "+clock)
}
