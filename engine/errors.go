package engine

import "errors"

var (
	// ErrAccountExists is returned when creating an account whose id is
	// already stored. Re-posting an id must not replace the stored account,
	// since that would erase its trade history.
	ErrAccountExists = errors.New("account already exists")

	// ErrNotOption is returned when expiration is requested for a spot trade.
	ErrNotOption = errors.New("trade is not an option")

	// ErrNotExpired is returned when expiration is requested before the
	// option's expiration date.
	ErrNotExpired = errors.New("option has not expired")

	// ErrNoPriceSource is returned by valuation when the engine was built
	// without a price source.
	ErrNoPriceSource = errors.New("no price source configured")
)
