// Package ledger owns the account cash balance and trade history. Every
// balance change flows through ApplyCashEffect so that, at any time,
//
//	Balance == StartingBalance + sum(applied cash effects)
//
// holds exactly. Amounts are decimals; the ledger never rounds.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the single source of truth for cash and trade history. It is a
// plain record: it holds no locks and no I/O. Callers own serialization of
// concurrent access per account.
type Account struct {
	ID              string          `json:"id"`
	Currency        string          `json:"currency"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Balance         decimal.Decimal `json:"balance"`
	Trades          []Trade         `json:"trades"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewAccount returns a fresh account with an empty trade list.
func NewAccount(id, currency string, startingBalance decimal.Decimal) *Account {
	return &Account{
		ID:              id,
		Currency:        currency,
		StartingBalance: startingBalance,
		Balance:         startingBalance,
		CreatedAt:       time.Now().UTC(),
	}
}

// ApplyCashEffect adds amount to the balance. Positive is a credit, negative
// a debit. No sign validation: debits are a legitimate economic outcome.
func (a *Account) ApplyCashEffect(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Overdrawn reports whether the balance has gone negative, e.g. after a
// strategy reserved cash beyond deposits.
func (a *Account) Overdrawn() bool {
	return a.Balance.IsNegative()
}

// AppendTrade inserts the trade at the end of the list. The id must not
// already exist.
func (a *Account) AppendTrade(t Trade) error {
	for i := range a.Trades {
		if a.Trades[i].ID == t.ID {
			return fmt.Errorf("append trade: %w: %q", ErrDuplicateTradeID, t.ID)
		}
	}
	a.Trades = append(a.Trades, t)
	return nil
}

// FindTrade returns a pointer to the trade with the given id, so callers can
// mutate it in place.
func (a *Account) FindTrade(id string) (*Trade, error) {
	for i := range a.Trades {
		if a.Trades[i].ID == id {
			return &a.Trades[i], nil
		}
	}
	return nil, fmt.Errorf("find trade: %w: %q", ErrTradeNotFound, id)
}

// RemoveTrade deletes the trade from the list regardless of status. It does
// NOT touch the balance: deletion forgets the record, it does not undo the
// trade's historical cash effects. Callers wanting an undo must close the
// trade first.
func (a *Account) RemoveTrade(id string) error {
	for i := range a.Trades {
		if a.Trades[i].ID == id {
			a.Trades = append(a.Trades[:i], a.Trades[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove trade: %w: %q", ErrTradeNotFound, id)
}
