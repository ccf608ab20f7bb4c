// Package market defines the price-source boundary. The engine consumes a
// current price per symbol and nothing else; where that price comes from is a
// collaborator concern.
package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoQuote is returned when a source has no price for the symbol.
var ErrNoQuote = errors.New("no quote for symbol")

// Quote is the current price of one symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// PriceSource supplies a current price for a symbol on demand.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (Quote, error)
}

// StaticSource is an in-memory PriceSource fed by the caller. Used by the CLI
// and by tests; a host application would back it with a real feed.
type StaticSource struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewStaticSource returns an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{quotes: make(map[string]Quote)}
}

// Set stores or replaces the quote for its symbol.
func (s *StaticSource) Set(q Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.Time.IsZero() {
		q.Time = time.Now().UTC()
	}
	s.quotes[q.Symbol] = q
}

// GetPrice implements PriceSource.
func (s *StaticSource) GetPrice(_ context.Context, symbol string) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("static source: %w: %q", ErrNoQuote, symbol)
	}
	return q, nil
}
