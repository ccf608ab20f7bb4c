package engine

import (
	"fmt"
	"reflect"
	"time"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OpenRequest carries everything needed to open a trade. Spot trades use
// Direction and Quantity; option trades use Strategy, Strike(s), Contracts,
// Premium and Expiration.
type OpenRequest struct {
	Type   ledger.TradeType `json:"trade_type" validate:"required,oneof=spot option"`
	Symbol string           `json:"symbol" validate:"required"`

	Direction  ledger.Direction `json:"direction,omitempty" validate:"omitempty,oneof=long short"`
	EntryPrice decimal.Decimal  `json:"entry_price" validate:"gt=0"`

	// Spot sizing.
	Quantity decimal.Decimal `json:"quantity,omitempty"`

	// Option sizing.
	Strategy     ledger.Strategy  `json:"strategy,omitempty" validate:"omitempty,oneof=covered_call cash_secured_put protective_put bull_call_spread bear_put_spread"`
	Strike       decimal.Decimal  `json:"strike,omitempty"`
	SecondStrike *decimal.Decimal `json:"second_strike,omitempty"`
	Contracts    int64            `json:"contracts,omitempty"`
	Premium      decimal.Decimal  `json:"premium,omitempty"`
	Expiration   time.Time        `json:"expiration,omitempty"`
	ImpliedVol   *float64         `json:"implied_vol,omitempty"`

	Notes  string `json:"notes,omitempty"`
	Signal string `json:"signal,omitempty"`
}

// CloseRequest settles an open trade. ClosePrice is the underlying price at
// settlement for every trade kind; ClosePremium optionally records the
// per-share option exit premium for display.
type CloseRequest struct {
	ClosePrice   decimal.Decimal  `json:"close_price"`
	ClosePremium *decimal.Decimal `json:"close_premium,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Teach the validator to treat decimals as floats so numeric tags like
	// gt=0 apply to them.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ledger.ErrInvalidTradeParameters, fmt.Sprintf(format, args...))
}

// validateOpen checks the request before any account state is touched, so a
// rejected open never has side effects.
func (e *Engine) validateOpen(req OpenRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidTradeParameters, err)
	}

	switch req.Type {
	case ledger.TradeTypeSpot:
		if req.Direction == "" {
			return invalid("spot trade requires a direction")
		}
		if !req.Quantity.IsPositive() {
			return invalid("quantity must be positive, got %s", req.Quantity)
		}

	case ledger.TradeTypeOption:
		if req.Strategy == "" {
			return invalid("option trade requires a strategy")
		}
		if req.Contracts < 1 {
			return invalid("contracts must be at least 1, got %d", req.Contracts)
		}
		if !req.Strike.IsPositive() {
			return invalid("strike must be positive, got %s", req.Strike)
		}
		if !req.Premium.IsPositive() {
			return invalid("premium must be positive, got %s", req.Premium)
		}
		if req.Expiration.IsZero() {
			return invalid("option trade requires an expiration date")
		}
		if err := validateSpread(req); err != nil {
			return err
		}
	}

	return nil
}

func validateSpread(req OpenRequest) error {
	if !req.Strategy.IsSpread() {
		if req.SecondStrike != nil {
			return invalid("second strike only applies to spreads")
		}
		return nil
	}
	if req.SecondStrike == nil {
		return invalid("%s requires a second strike", req.Strategy)
	}
	if req.SecondStrike.Equal(req.Strike) {
		return invalid("second strike must differ from first strike")
	}

	switch req.Strategy {
	case ledger.StrategyBullCallSpread:
		if req.SecondStrike.LessThan(req.Strike) {
			return invalid("bull call spread requires second strike above first (got %s <= %s)",
				req.SecondStrike, req.Strike)
		}
	case ledger.StrategyBearPutSpread:
		if req.SecondStrike.GreaterThan(req.Strike) {
			return invalid("bear put spread requires second strike below first (got %s >= %s)",
				req.SecondStrike, req.Strike)
		}
	}
	return nil
}

// direction derives the stored direction for option structures: bearish
// spreads are short exposure, everything else trades with the underlying.
func direction(req OpenRequest) ledger.Direction {
	if req.Type == ledger.TradeTypeSpot {
		return req.Direction
	}
	if req.Direction != "" {
		return req.Direction
	}
	if req.Strategy == ledger.StrategyBearPutSpread {
		return ledger.DirectionShort
	}
	return ledger.DirectionLong
}
