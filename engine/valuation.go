package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Zee-create-614/papertrader/payoff"
	"github.com/shopspring/decimal"
)

// TradeValuation is one open trade marked at the current price.
type TradeValuation struct {
	TradeID       string          `json:"trade_id"`
	Symbol        string          `json:"symbol"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
}

// Valuation is the account marked at current prices.
type Valuation struct {
	AccountID     string           `json:"account_id"`
	AsOf          time.Time        `json:"as_of"`
	Balance       decimal.Decimal  `json:"balance"`
	UnrealizedPnl decimal.Decimal  `json:"unrealized_pnl"`
	Equity        decimal.Decimal  `json:"equity"`
	OpenTrades    []TradeValuation `json:"open_trades"`
}

// Valuate marks every open trade against the price source and returns the
// account equity (balance + unrealized P&L). Read-only: nothing is persisted.
func (e *Engine) Valuate(ctx context.Context, accountID string) (Valuation, error) {
	if e.prices == nil {
		return Valuation{}, ErrNoPriceSource
	}

	acct, err := e.store.Load(ctx, accountID)
	if err != nil {
		return Valuation{}, fmt.Errorf("valuate: %w", err)
	}

	asOf := e.now()
	v := Valuation{
		AccountID: acct.ID,
		AsOf:      asOf,
		Balance:   acct.Balance,
	}

	for i := range acct.Trades {
		t := &acct.Trades[i]
		if !t.IsOpen() {
			continue
		}

		q, err := e.prices.GetPrice(ctx, t.Symbol)
		if err != nil {
			return Valuation{}, fmt.Errorf("valuate trade %q: %w", t.ID, err)
		}

		upnl, err := payoff.UnrealizedPnl(t, q.Price, asOf)
		if err != nil {
			return Valuation{}, fmt.Errorf("valuate trade %q: %w", t.ID, err)
		}

		v.UnrealizedPnl = v.UnrealizedPnl.Add(upnl)
		v.OpenTrades = append(v.OpenTrades, TradeValuation{
			TradeID:       t.ID,
			Symbol:        t.Symbol,
			CurrentPrice:  q.Price,
			UnrealizedPnl: upnl,
		})
	}

	v.Equity = v.Balance.Add(v.UnrealizedPnl)
	return v, nil
}
