package payoff

import (
	"time"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/shopspring/decimal"
)

// UnrealizedPnl estimates the P&L of an open trade marked at the current
// underlying price.
//
// Spot trades are marked to market directly. Option trades use a simplified
// linear time-decay approximation instead of a pricing model: the P&L the
// trade would realize if settled now is adjusted by the time value still left
// in the premium, which decays linearly from open to expiration. Net-credit
// structures (covered call, cash-secured put) have not yet earned the
// remaining time value; net-debit structures still hold it. At open this
// yields zero, at expiration it converges to the settlement P&L.
func UnrealizedPnl(t *ledger.Trade, current decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	settle, err := CloseSettlement(t, current)
	if err != nil {
		return decimal.Zero, err
	}
	if t.Type == ledger.TradeTypeSpot {
		return settle.RealizedPnl, nil
	}

	o := t.Option
	remaining := timeValueFraction(t.OpenedAt, o.Expiration, asOf)
	timeValue := o.TotalPremium().Mul(remaining)

	switch o.Strategy {
	case ledger.StrategyCoveredCall, ledger.StrategyCashSecuredPut:
		return settle.RealizedPnl.Sub(timeValue), nil
	default:
		return settle.RealizedPnl.Add(timeValue), nil
	}
}

// timeValueFraction returns the fraction of the option's life still ahead of
// asOf, clamped to [0, 1].
func timeValueFraction(opened, expiration, asOf time.Time) decimal.Decimal {
	total := expiration.Sub(opened)
	if total <= 0 {
		return decimal.Zero
	}
	left := expiration.Sub(asOf)
	if left <= 0 {
		return decimal.Zero
	}
	if left > total {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(left.Seconds() / total.Seconds())
}
