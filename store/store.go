// Package store persists whole Account records keyed by account id. The
// engine reads the whole account, mutates it in memory, and writes the whole
// account back; there are no partial updates.
//
// The serialized form is JSON and must stay forward-compatible: decoding
// ignores unknown fields and defaults missing ones, so adding optional trade
// fields never breaks previously stored records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zee-create-614/papertrader/ledger"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnavailable wraps collaborator failures (disk, database, network).
	// The engine propagates it unchanged; it never falls back to a fresh
	// account, since that would erase history.
	ErrUnavailable = errors.New("store unavailable")
)

// Store durably holds one serialized Account per account id. Implementations
// are safe for concurrent use; serializing mutations of a single account is
// the caller's job.
type Store interface {
	Load(ctx context.Context, accountID string) (*ledger.Account, error)
	Save(ctx context.Context, acct *ledger.Account) error
	Delete(ctx context.Context, accountID string) error
	Close() error
}

func encode(acct *ledger.Account) ([]byte, error) {
	data, err := json.Marshal(acct)
	if err != nil {
		return nil, fmt.Errorf("encode account %q: %w", acct.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*ledger.Account, error) {
	var acct ledger.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acct, nil
}

// unavailable tags err with ErrUnavailable so callers can errors.Is it while
// keeping the underlying cause in the message.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
