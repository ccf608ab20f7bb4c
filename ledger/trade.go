package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeType string

const (
	TradeTypeSpot   TradeType = "spot"
	TradeTypeOption TradeType = "option"
)

type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

// Strategy identifies one of the supported option structures.
type Strategy string

const (
	StrategyCoveredCall    Strategy = "covered_call"
	StrategyCashSecuredPut Strategy = "cash_secured_put"
	StrategyProtectivePut  Strategy = "protective_put"
	StrategyBullCallSpread Strategy = "bull_call_spread"
	StrategyBearPutSpread  Strategy = "bear_put_spread"
)

// IsSpread reports whether the strategy carries a second strike.
func (s Strategy) IsSpread() bool {
	return s == StrategyBullCallSpread || s == StrategyBearPutSpread
}

// SharesPerContract is the fixed option contract multiplier.
const SharesPerContract = 100

// SpotLeg holds the fields that only exist on a spot trade.
type SpotLeg struct {
	// Quantity is the number of units; fractional for BTC-like symbols.
	Quantity   decimal.Decimal  `json:"quantity"`
	ClosePrice *decimal.Decimal `json:"close_price,omitempty"`
}

// OptionLeg holds the fields that only exist on an option trade.
type OptionLeg struct {
	Strategy Strategy        `json:"strategy"`
	Strike   decimal.Decimal `json:"strike"`
	// SecondStrike is present for spreads only: the long/short wing strike.
	SecondStrike *decimal.Decimal `json:"second_strike,omitempty"`
	Contracts    int64            `json:"contracts"`
	// Premium is the net per-share premium paid or received at entry.
	Premium    decimal.Decimal `json:"premium"`
	Expiration time.Time       `json:"expiration"`
	ImpliedVol *float64        `json:"implied_vol,omitempty"`
	// ClosePrice is the underlying price at settlement, set on close/expire.
	ClosePrice *decimal.Decimal `json:"close_price,omitempty"`
	// ClosePremium is the per-share premium at exit, informational only.
	ClosePremium *decimal.Decimal `json:"close_premium,omitempty"`
}

// Shares returns contracts x 100 as a decimal.
func (o *OptionLeg) Shares() decimal.Decimal {
	return decimal.NewFromInt(o.Contracts * SharesPerContract)
}

// TotalPremium returns premium x shares.
func (o *OptionLeg) TotalPremium() decimal.Decimal {
	return o.Premium.Mul(o.Shares())
}

// Trade is a tagged union over the spot and option families. Exactly one of
// Spot/Option is populated, consistent with Type.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Type       TradeType       `json:"trade_type"`
	Direction  Direction       `json:"direction"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	OpenedAt   time.Time       `json:"opened_at"`
	Status     Status          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	// Signal is an informational tag captured at entry; never used in P&L.
	Signal string `json:"signal,omitempty"`

	Spot   *SpotLeg   `json:"spot,omitempty"`
	Option *OptionLeg `json:"option,omitempty"`

	ClosedAt   *time.Time       `json:"closed_at,omitempty"`
	Pnl        *decimal.Decimal `json:"pnl,omitempty"`
	PnlPercent *decimal.Decimal `json:"pnl_percent,omitempty"`
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// IsSettled reports whether the trade reached a terminal state (closed or
// expired) and carries a frozen realized P&L.
func (t *Trade) IsSettled() bool {
	return t.Status == StatusClosed || t.Status == StatusExpired
}
