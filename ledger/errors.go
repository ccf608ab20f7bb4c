package ledger

import "errors"

var (
	// ErrInvalidTradeParameters covers user-correctable input problems such
	// as non-positive sizes and bad spread strike ordering.
	ErrInvalidTradeParameters = errors.New("invalid trade parameters")

	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradeAlreadyClosed = errors.New("trade already closed")

	// ErrDuplicateTradeID is an internal invariant violation: trade ids are
	// generated by the engine and must never collide.
	ErrDuplicateTradeID = errors.New("duplicate trade id")
)
