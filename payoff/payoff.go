// Package payoff maps trade parameters and a settlement price to cash
// amounts. Everything here is a pure function over already-validated inputs:
// no mutation, no I/O, no clock.
//
// Sign convention: positive cash flow is a credit to the account balance.
package payoff

import (
	"errors"
	"fmt"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/shopspring/decimal"
)

// ErrVariantMismatch means a trade was routed through the wrong family's
// settlement logic (spot trade through option math or vice versa). That is a
// programming error, not a user error; it fails fast rather than computing
// zero.
var ErrVariantMismatch = errors.New("trade variant mismatch")

// Settlement is the result of closing a trade at a given underlying price.
// RealizedPnl is the display number; CashEffect is the full cash movement the
// ledger must apply at close, including the return of reserved or invested
// capital. The two are distinct values on purpose: for every strategy,
//
//	EntryCashFlow + CashEffect == RealizedPnl
//
// so that the net balance change across open+close equals the realized P&L.
type Settlement struct {
	RealizedPnl decimal.Decimal
	CashEffect  decimal.Decimal
}

// EntryCashFlow returns the cash credit (+) or debit (-) applied to the
// balance when the trade is opened.
func EntryCashFlow(t *ledger.Trade) (decimal.Decimal, error) {
	switch t.Type {
	case ledger.TradeTypeSpot:
		if t.Spot == nil {
			return decimal.Zero, fmt.Errorf("entry cash flow: %w: spot trade %q has no spot leg", ErrVariantMismatch, t.ID)
		}
		cost := t.EntryPrice.Mul(t.Spot.Quantity)
		if t.Direction == ledger.DirectionShort {
			// Short sale proceeds are credited up front.
			return cost, nil
		}
		return cost.Neg(), nil

	case ledger.TradeTypeOption:
		o := t.Option
		if o == nil {
			return decimal.Zero, fmt.Errorf("entry cash flow: %w: option trade %q has no option leg", ErrVariantMismatch, t.ID)
		}
		shares := o.Shares()
		tp := o.TotalPremium()
		switch o.Strategy {
		case ledger.StrategyCoveredCall:
			// Buy shares, sell the call.
			return tp.Sub(t.EntryPrice.Mul(shares)), nil
		case ledger.StrategyCashSecuredPut:
			// Collect premium, reserve cash for assignment at the strike.
			return tp.Sub(o.Strike.Mul(shares)), nil
		case ledger.StrategyProtectivePut:
			// Shares assumed pre-owned; only the put cost is booked.
			return tp.Neg(), nil
		case ledger.StrategyBullCallSpread, ledger.StrategyBearPutSpread:
			// Net debit.
			return tp.Neg(), nil
		default:
			return decimal.Zero, fmt.Errorf("entry cash flow: %w: unknown strategy %q", ErrVariantMismatch, o.Strategy)
		}

	default:
		return decimal.Zero, fmt.Errorf("entry cash flow: %w: unknown trade type %q", ErrVariantMismatch, t.Type)
	}
}

// CloseSettlement computes the realized P&L and the close-time cash movement
// for settling the trade at underlying price s.
func CloseSettlement(t *ledger.Trade, s decimal.Decimal) (Settlement, error) {
	switch t.Type {
	case ledger.TradeTypeSpot:
		if t.Spot == nil {
			return Settlement{}, fmt.Errorf("close settlement: %w: spot trade %q has no spot leg", ErrVariantMismatch, t.ID)
		}
		return closeSpot(t, s), nil
	case ledger.TradeTypeOption:
		if t.Option == nil {
			return Settlement{}, fmt.Errorf("close settlement: %w: option trade %q has no option leg", ErrVariantMismatch, t.ID)
		}
		return closeOption(t, s)
	default:
		return Settlement{}, fmt.Errorf("close settlement: %w: unknown trade type %q", ErrVariantMismatch, t.Type)
	}
}

func closeSpot(t *ledger.Trade, s decimal.Decimal) Settlement {
	q := t.Spot.Quantity
	if t.Direction == ledger.DirectionShort {
		return Settlement{
			RealizedPnl: t.EntryPrice.Sub(s).Mul(q),
			// Buy back the borrowed units.
			CashEffect: s.Mul(q).Neg(),
		}
	}
	return Settlement{
		RealizedPnl: s.Sub(t.EntryPrice).Mul(q),
		// Sale proceeds.
		CashEffect: s.Mul(q),
	}
}

func closeOption(t *ledger.Trade, s decimal.Decimal) (Settlement, error) {
	o := t.Option
	shares := o.Shares()
	tp := o.TotalPremium()

	switch o.Strategy {
	case ledger.StrategyCoveredCall:
		callPayout := max0(s.Sub(o.Strike)).Mul(shares)
		return Settlement{
			RealizedPnl: s.Sub(t.EntryPrice).Mul(shares).Sub(callPayout).Add(tp),
			// Share sale proceeds minus the short call settlement.
			CashEffect: s.Mul(shares).Sub(callPayout),
		}, nil

	case ledger.StrategyCashSecuredPut:
		putPayout := max0(o.Strike.Sub(s)).Mul(shares)
		return Settlement{
			RealizedPnl: tp.Sub(putPayout),
			// Release the reserved strike cash minus the assignment loss.
			CashEffect: o.Strike.Mul(shares).Sub(putPayout),
		}, nil

	case ledger.StrategyProtectivePut:
		putPayout := max0(o.Strike.Sub(s)).Mul(shares)
		stock := s.Sub(t.EntryPrice).Mul(shares)
		return Settlement{
			RealizedPnl: stock.Add(putPayout).Sub(tp),
			CashEffect:  stock.Add(putPayout),
		}, nil

	case ledger.StrategyBullCallSpread:
		if o.SecondStrike == nil {
			return Settlement{}, fmt.Errorf("close settlement: %w: bull call spread %q has no second strike", ErrVariantMismatch, t.ID)
		}
		value := max0(s.Sub(o.Strike)).Sub(max0(s.Sub(*o.SecondStrike))).Mul(shares)
		return Settlement{
			RealizedPnl: value.Sub(tp),
			CashEffect:  value,
		}, nil

	case ledger.StrategyBearPutSpread:
		if o.SecondStrike == nil {
			return Settlement{}, fmt.Errorf("close settlement: %w: bear put spread %q has no second strike", ErrVariantMismatch, t.ID)
		}
		value := max0(o.Strike.Sub(s)).Sub(max0(o.SecondStrike.Sub(s))).Mul(shares)
		return Settlement{
			RealizedPnl: value.Sub(tp),
			CashEffect:  value,
		}, nil

	default:
		return Settlement{}, fmt.Errorf("close settlement: %w: unknown strategy %q", ErrVariantMismatch, o.Strategy)
	}
}

// max0 clamps negatives to zero explicitly rather than relying on incidental
// sign behavior downstream.
func max0(d decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, d)
}
