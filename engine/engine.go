// Package engine drives the trade lifecycle: it validates requests, asks the
// payoff engine for cash effects, mutates the account ledger, and round-trips
// the whole account through the store. All operations follow the same shape:
// load, mutate a working copy, save. An error anywhere leaves the persisted
// account untouched, so from the caller's perspective a settlement either
// fully happens or not at all.
//
// The engine holds no per-account locks. One account has one writer; hosts
// that allow concurrent callers must serialize access externally.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zee-create-614/papertrader/id"
	"github.com/Zee-create-614/papertrader/journal"
	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/Zee-create-614/papertrader/market"
	"github.com/Zee-create-614/papertrader/payoff"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Engine struct {
	store    store.Store
	prices   market.PriceSource
	journal  journal.Journal
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Engine)

// WithLogger replaces the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPriceSource enables mark-to-market valuation.
func WithPriceSource(ps market.PriceSource) Option {
	return func(e *Engine) { e.prices = ps }
}

// WithJournal records every settlement to the given journal.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithClock overrides the time source; tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		logger:   zap.NewNop(),
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateAccount creates and persists a new account. An empty accountID gets a
// generated UUID; an empty currency defaults to USD.
func (e *Engine) CreateAccount(ctx context.Context, accountID, currency string, startingBalance decimal.Decimal) (*ledger.Account, error) {
	if !startingBalance.IsPositive() {
		return nil, invalid("starting balance must be positive, got %s", startingBalance)
	}
	if accountID == "" {
		accountID = uuid.NewString()
	}
	if currency == "" {
		currency = "USD"
	}

	if _, err := e.store.Load(ctx, accountID); err == nil {
		return nil, fmt.Errorf("create account: %w: %q", ErrAccountExists, accountID)
	} else if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, fmt.Errorf("create account: %w", err)
	}

	acct := ledger.NewAccount(accountID, currency, startingBalance)
	acct.CreatedAt = e.now()

	if err := e.store.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	e.logger.Info("account created",
		zap.String("account_id", acct.ID),
		zap.String("starting_balance", startingBalance.String()))
	return acct, nil
}

// GetAccount loads the current account snapshot.
func (e *Engine) GetAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	return e.store.Load(ctx, accountID)
}

// OpenTrade validates the request, applies the entry cash flow, appends the
// new trade and persists the account. It returns the created trade.
func (e *Engine) OpenTrade(ctx context.Context, accountID string, req OpenRequest) (*ledger.Trade, error) {
	if err := e.validateOpen(req); err != nil {
		return nil, err
	}

	acct, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	trade := buildTrade(req, id.New(), e.now())

	entry, err := payoff.EntryCashFlow(&trade)
	if err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	acct.ApplyCashEffect(entry)
	if err := acct.AppendTrade(trade); err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	if acct.Overdrawn() {
		e.logger.Warn("balance negative after open",
			zap.String("account_id", acct.ID),
			zap.String("trade_id", trade.ID),
			zap.String("balance", acct.Balance.String()))
	}

	if err := e.store.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	e.logger.Info("trade opened",
		zap.String("account_id", acct.ID),
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("trade_type", string(trade.Type)),
		zap.String("entry_cash_flow", entry.String()))
	return &trade, nil
}

func buildTrade(req OpenRequest, tradeID string, openedAt time.Time) ledger.Trade {
	t := ledger.Trade{
		ID:         tradeID,
		Symbol:     req.Symbol,
		Type:       req.Type,
		Direction:  direction(req),
		EntryPrice: req.EntryPrice,
		OpenedAt:   openedAt,
		Status:     ledger.StatusOpen,
		Notes:      req.Notes,
		Signal:     req.Signal,
	}

	switch req.Type {
	case ledger.TradeTypeSpot:
		t.Spot = &ledger.SpotLeg{Quantity: req.Quantity}
	case ledger.TradeTypeOption:
		t.Option = &ledger.OptionLeg{
			Strategy:     req.Strategy,
			Strike:       req.Strike,
			SecondStrike: req.SecondStrike,
			Contracts:    req.Contracts,
			Premium:      req.Premium,
			Expiration:   req.Expiration,
			ImpliedVol:   req.ImpliedVol,
		}
	}
	return t
}

// CloseTrade settles an open trade at the given underlying price, freezing
// its P&L and applying the close-time cash movement to the balance.
func (e *Engine) CloseTrade(ctx context.Context, accountID, tradeID string, req CloseRequest) (*ledger.Trade, error) {
	if !req.ClosePrice.IsPositive() {
		return nil, invalid("close price must be positive, got %s", req.ClosePrice)
	}
	return e.settle(ctx, accountID, tradeID, req, ledger.StatusClosed, nil)
}

// ExpireTrade settles an open option whose expiration date has passed,
// recording the terminal status "expired". The core never auto-expires;
// callers invoke this when they observe an option past its expiration.
func (e *Engine) ExpireTrade(ctx context.Context, accountID, tradeID string, settlementPrice decimal.Decimal) (*ledger.Trade, error) {
	if !settlementPrice.IsPositive() {
		return nil, invalid("settlement price must be positive, got %s", settlementPrice)
	}
	guard := func(t *ledger.Trade) error {
		if t.Type != ledger.TradeTypeOption {
			return fmt.Errorf("expire trade %q: %w", tradeID, ErrNotOption)
		}
		if e.now().Before(t.Option.Expiration) {
			return fmt.Errorf("expire trade %q: %w (expires %s)",
				tradeID, ErrNotExpired, t.Option.Expiration.Format(time.RFC3339))
		}
		return nil
	}
	return e.settle(ctx, accountID, tradeID, CloseRequest{ClosePrice: settlementPrice}, ledger.StatusExpired, guard)
}

// settle is the shared close/expire path. The guard runs after the trade is
// found and confirmed open, before any mutation.
func (e *Engine) settle(ctx context.Context, accountID, tradeID string, req CloseRequest, terminal ledger.Status, guard func(*ledger.Trade) error) (*ledger.Trade, error) {
	acct, err := e.store.Load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}

	t, err := acct.FindTrade(tradeID)
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}
	if !t.IsOpen() {
		return nil, fmt.Errorf("close trade: %w: %q", ledger.ErrTradeAlreadyClosed, tradeID)
	}
	if guard != nil {
		if err := guard(t); err != nil {
			return nil, err
		}
	}

	settlement, err := payoff.CloseSettlement(t, req.ClosePrice)
	if err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}

	closedAt := e.now()
	pnl := settlement.RealizedPnl
	pnlPct := pnlPercent(t, pnl)

	switch t.Type {
	case ledger.TradeTypeSpot:
		t.Spot.ClosePrice = &req.ClosePrice
	case ledger.TradeTypeOption:
		t.Option.ClosePrice = &req.ClosePrice
		t.Option.ClosePremium = req.ClosePremium
	}
	t.Status = terminal
	t.ClosedAt = &closedAt
	t.Pnl = &pnl
	t.PnlPercent = &pnlPct

	acct.ApplyCashEffect(settlement.CashEffect)

	if err := e.store.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("close trade: %w", err)
	}

	e.logger.Info("trade settled",
		zap.String("account_id", acct.ID),
		zap.String("trade_id", t.ID),
		zap.String("status", string(terminal)),
		zap.String("realized_pnl", pnl.String()),
		zap.String("cash_effect", settlement.CashEffect.String()),
		zap.String("balance", acct.Balance.String()))

	e.record(acct, t)

	cp := *t
	return &cp, nil
}

// pnlPercent relates the realized P&L to the capital the trade put at play:
// total premium for options, entry cost for spot. Zero denominators yield 0.
func pnlPercent(t *ledger.Trade, pnl decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	switch t.Type {
	case ledger.TradeTypeOption:
		tp := t.Option.TotalPremium()
		if tp.IsPositive() {
			return pnl.Div(tp).Mul(hundred)
		}
	case ledger.TradeTypeSpot:
		cost := t.EntryPrice.Mul(t.Spot.Quantity)
		if cost.IsPositive() {
			return pnl.Div(cost).Mul(hundred)
		}
	}
	return decimal.Zero
}

// DeleteTrade removes the trade record regardless of status. Prior cash
// effects stay on the balance: delete forgets, it does not undo. Close the
// trade first if the intent is to unwind it.
func (e *Engine) DeleteTrade(ctx context.Context, accountID, tradeID string) error {
	acct, err := e.store.Load(ctx, accountID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}

	t, err := acct.FindTrade(tradeID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	if t.IsOpen() {
		e.logger.Warn("deleting open trade; its entry cash effect is not reversed",
			zap.String("account_id", accountID),
			zap.String("trade_id", tradeID))
	}

	if err := acct.RemoveTrade(tradeID); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	if err := e.store.Save(ctx, acct); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	return nil
}

// record journals the settlement. Journal failures are logged, never
// propagated: the persisted ledger is already authoritative.
func (e *Engine) record(acct *ledger.Account, t *ledger.Trade) {
	if e.journal == nil {
		return
	}

	rec := journal.TradeRecord{
		TradeID:     t.ID,
		AccountID:   acct.ID,
		Symbol:      t.Symbol,
		TradeType:   string(t.Type),
		Direction:   string(t.Direction),
		EntryPrice:  t.EntryPrice,
		OpenedAt:    t.OpenedAt,
		RealizedPnl: *t.Pnl,
		PnlPercent:  *t.PnlPercent,
		Outcome:     string(t.Status),
	}
	if t.ClosedAt != nil {
		rec.ClosedAt = *t.ClosedAt
	}
	switch t.Type {
	case ledger.TradeTypeSpot:
		rec.Quantity = t.Spot.Quantity
		if t.Spot.ClosePrice != nil {
			rec.ClosePrice = *t.Spot.ClosePrice
		}
	case ledger.TradeTypeOption:
		rec.Strategy = string(t.Option.Strategy)
		rec.Contracts = t.Option.Contracts
		rec.Premium = t.Option.Premium
		rec.TotalPremium = t.Option.TotalPremium()
		if t.Option.ClosePrice != nil {
			rec.ClosePrice = *t.Option.ClosePrice
		}
	}

	if err := e.journal.RecordTrade(rec); err != nil {
		e.logger.Warn("journal trade record failed", zap.Error(err))
	}

	open := 0
	for i := range acct.Trades {
		if acct.Trades[i].IsOpen() {
			open++
		}
	}
	if err := e.journal.RecordBalance(journal.BalanceSnapshot{
		Time:            rec.ClosedAt,
		AccountID:       acct.ID,
		Balance:         acct.Balance,
		StartingBalance: acct.StartingBalance,
		OpenTrades:      open,
	}); err != nil {
		e.logger.Warn("journal balance snapshot failed", zap.Error(err))
	}
}
