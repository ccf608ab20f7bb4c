package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zee-create-614/papertrader/ledger"
)

// Memory is an in-process Store for tests and ephemeral simulations. It keeps
// the serialized blob rather than the live struct, so loads always return an
// independent copy and callers cannot alias each other's accounts.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, accountID string) (*ledger.Account, error) {
	m.mu.RLock()
	data, ok := m.accounts[accountID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("memory: load: %w: %q", ErrAccountNotFound, accountID)
	}
	return decode(data)
}

func (m *Memory) Save(_ context.Context, acct *ledger.Account) error {
	data, err := encode(acct)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.accounts[acct.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return fmt.Errorf("memory: delete: %w: %q", ErrAccountNotFound, accountID)
	}
	delete(m.accounts, accountID)
	return nil
}

func (m *Memory) Close() error { return nil }
