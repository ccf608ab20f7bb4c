// Package journal records settled trades and balance snapshots for later
// review. The journal is an append-only sidecar: the account ledger stays
// authoritative, and a journal failure never rolls back a settlement.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one settled (closed or expired) trade.
type TradeRecord struct {
	TradeID   string
	AccountID string
	Symbol    string
	TradeType string
	Strategy  string
	Direction string

	Quantity  decimal.Decimal
	Contracts int64

	EntryPrice   decimal.Decimal
	ClosePrice   decimal.Decimal
	Premium      decimal.Decimal
	TotalPremium decimal.Decimal

	OpenedAt time.Time
	ClosedAt time.Time

	RealizedPnl decimal.Decimal
	PnlPercent  decimal.Decimal

	// Outcome is the terminal status, "closed" or "expired".
	Outcome string
}

// BalanceSnapshot is the account balance immediately after a settlement.
type BalanceSnapshot struct {
	Time            time.Time
	AccountID       string
	Balance         decimal.Decimal
	StartingBalance decimal.Decimal
	OpenTrades      int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}
