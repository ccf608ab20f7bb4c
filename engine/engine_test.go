package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()

	eng := New(store.NewMemory(), WithClock(func() time.Time { return testNow }))

	acct, err := eng.CreateAccount(context.Background(), "", "USD", dec("100000"))
	require.NoError(t, err)

	return eng, acct.ID
}

func coveredCallRequest() OpenRequest {
	return OpenRequest{
		Type:       ledger.TradeTypeOption,
		Symbol:     "AAPL",
		EntryPrice: dec("100"),
		Strategy:   ledger.StrategyCoveredCall,
		Strike:     dec("110"),
		Contracts:  1,
		Premium:    dec("2"),
		Expiration: testNow.Add(30 * 24 * time.Hour),
	}
}

func TestCreateAccount(t *testing.T) {
	t.Parallel()

	eng := New(store.NewMemory())

	acct, err := eng.CreateAccount(context.Background(), "acct-1", "", dec("5000"))
	require.NoError(t, err)
	assert.Equal(t, "acct-1", acct.ID)
	assert.Equal(t, "USD", acct.Currency)
	assert.True(t, acct.Balance.Equal(dec("5000")))

	// Generated ids are accepted too.
	acct2, err := eng.CreateAccount(context.Background(), "", "USD", dec("5000"))
	require.NoError(t, err)
	assert.NotEmpty(t, acct2.ID)
	assert.NotEqual(t, acct.ID, acct2.ID)

	_, err = eng.CreateAccount(context.Background(), "", "USD", dec("0"))
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
}

// Re-posting an existing account id must fail rather than replace the stored
// account, which would erase its trade history.
func TestCreateAccountRejectsExistingID(t *testing.T) {
	t.Parallel()

	eng := New(store.NewMemory(), WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	_, err := eng.CreateAccount(ctx, "acct-1", "USD", dec("100000"))
	require.NoError(t, err)
	trade, err := eng.OpenTrade(ctx, "acct-1", coveredCallRequest())
	require.NoError(t, err)

	_, err = eng.CreateAccount(ctx, "acct-1", "USD", dec("5000"))
	assert.ErrorIs(t, err, ErrAccountExists)

	// The stored account survives untouched.
	acct, err := eng.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("90200")), "balance %s", acct.Balance)
	_, err = acct.FindTrade(trade.ID)
	assert.NoError(t, err)
}

func TestOpenTradeSpot(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	trade, err := eng.OpenTrade(ctx, acctID, OpenRequest{
		Type:       ledger.TradeTypeSpot,
		Symbol:     "BTC",
		Direction:  ledger.DirectionLong,
		EntryPrice: dec("96000"),
		Quantity:   dec("0.25"),
		Signal:     "breakout",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, ledger.StatusOpen, trade.Status)
	assert.Equal(t, testNow, trade.OpenedAt)
	assert.Equal(t, "breakout", trade.Signal)
	require.NotNil(t, trade.Spot)
	assert.Nil(t, trade.Option)

	acct, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("76000")), "got %s", acct.Balance)
	require.Len(t, acct.Trades, 1)
}

func TestOpenTradeValidation(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	base := coveredCallRequest()

	tests := []struct {
		name   string
		mutate func(*OpenRequest)
	}{
		{"zero entry price", func(r *OpenRequest) { r.EntryPrice = decimal.Zero }},
		{"negative entry price", func(r *OpenRequest) { r.EntryPrice = dec("-1") }},
		{"missing symbol", func(r *OpenRequest) { r.Symbol = "" }},
		{"unknown type", func(r *OpenRequest) { r.Type = "margin" }},
		{"zero contracts", func(r *OpenRequest) { r.Contracts = 0 }},
		{"zero strike", func(r *OpenRequest) { r.Strike = decimal.Zero }},
		{"zero premium", func(r *OpenRequest) { r.Premium = decimal.Zero }},
		{"missing expiration", func(r *OpenRequest) { r.Expiration = time.Time{} }},
		{"missing strategy", func(r *OpenRequest) { r.Strategy = "" }},
		{"unknown strategy", func(r *OpenRequest) { r.Strategy = "iron_condor" }},
		{"second strike on non-spread", func(r *OpenRequest) { r.SecondStrike = decPtr("120") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := eng.OpenTrade(ctx, acctID, req)
			assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
		})
	}

	// Spot-specific checks.
	_, err := eng.OpenTrade(ctx, acctID, OpenRequest{
		Type: ledger.TradeTypeSpot, Symbol: "BTC",
		Direction: ledger.DirectionLong, EntryPrice: dec("100"),
		Quantity: dec("0"),
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)

	_, err = eng.OpenTrade(ctx, acctID, OpenRequest{
		Type: ledger.TradeTypeSpot, Symbol: "BTC",
		EntryPrice: dec("100"), Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)

	// A rejected open must leave the balance untouched.
	acct, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("100000")))
	assert.Empty(t, acct.Trades)
}

func TestSpreadStrikeOrderingValidation(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	spread := func(strategy ledger.Strategy, strike, strike2 string) OpenRequest {
		req := coveredCallRequest()
		req.Strategy = strategy
		req.Strike = dec(strike)
		req.SecondStrike = decPtr(strike2)
		return req
	}

	// Bull call spread: second strike must be strictly above the first.
	_, err := eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBullCallSpread, "110", "100"))
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
	_, err = eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBullCallSpread, "110", "110"))
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
	_, err = eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBullCallSpread, "100", "110"))
	assert.NoError(t, err)

	// Bear put spread: second strike must be strictly below the first.
	_, err = eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBearPutSpread, "100", "110"))
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
	_, err = eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBearPutSpread, "100", "100"))
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
	_, err = eng.OpenTrade(ctx, acctID, spread(ledger.StrategyBearPutSpread, "110", "100"))
	assert.NoError(t, err)

	// A spread without a second strike is rejected.
	req := spread(ledger.StrategyBullCallSpread, "100", "110")
	req.SecondStrike = nil
	_, err = eng.OpenTrade(ctx, acctID, req)
	assert.ErrorIs(t, err, ledger.ErrInvalidTradeParameters)
}

// After an open+close round trip the net balance change equals the frozen
// realized P&L exactly.
func TestCloseTradeCoveredCallRoundTrip(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	trade, err := eng.OpenTrade(ctx, acctID, coveredCallRequest())
	require.NoError(t, err)

	acct, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("90200")), "after open: %s", acct.Balance)

	closed, err := eng.CloseTrade(ctx, acctID, trade.ID, CloseRequest{ClosePrice: dec("115")})
	require.NoError(t, err)

	assert.Equal(t, ledger.StatusClosed, closed.Status)
	require.NotNil(t, closed.Pnl)
	assert.True(t, closed.Pnl.Equal(dec("1200")), "pnl %s", closed.Pnl)
	require.NotNil(t, closed.PnlPercent)
	assert.True(t, closed.PnlPercent.Equal(dec("600")), "pnl%% %s", closed.PnlPercent)
	require.NotNil(t, closed.ClosedAt)

	acct, err = eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(dec("101200")), "after close: %s", acct.Balance)
}

// For any sequence of opens and closes, balance stays exactly at
// startingBalance plus the realized P&L of settled trades plus the entry cash
// flows still outstanding on open trades.
func TestBalanceConservationAcrossStrategies(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	exp := testNow.Add(30 * 24 * time.Hour)
	requests := []OpenRequest{
		{Type: ledger.TradeTypeSpot, Symbol: "BTC", Direction: ledger.DirectionLong, EntryPrice: dec("96000"), Quantity: dec("0.1")},
		{Type: ledger.TradeTypeSpot, Symbol: "ETH", Direction: ledger.DirectionShort, EntryPrice: dec("3000"), Quantity: dec("2")},
		{Type: ledger.TradeTypeOption, Symbol: "AAPL", Strategy: ledger.StrategyCoveredCall, EntryPrice: dec("100"), Strike: dec("110"), Contracts: 1, Premium: dec("2"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "MSFT", Strategy: ledger.StrategyCashSecuredPut, EntryPrice: dec("300"), Strike: dec("290"), Contracts: 2, Premium: dec("4"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "NVDA", Strategy: ledger.StrategyProtectivePut, EntryPrice: dec("500"), Strike: dec("480"), Contracts: 1, Premium: dec("6"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "AMD", Strategy: ledger.StrategyBullCallSpread, EntryPrice: dec("150"), Strike: dec("150"), SecondStrike: decPtr("160"), Contracts: 1, Premium: dec("3"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "TSLA", Strategy: ledger.StrategyBearPutSpread, EntryPrice: dec("200"), Strike: dec("200"), SecondStrike: decPtr("180"), Contracts: 1, Premium: dec("5"), Expiration: exp},
	}
	closes := []string{"99000", "3100", "108", "250", "520", "164", "185"}

	var ids []string
	for _, req := range requests {
		tr, err := eng.OpenTrade(ctx, acctID, req)
		require.NoError(t, err)
		ids = append(ids, tr.ID)
	}

	var realized decimal.Decimal
	for i, id := range ids {
		closed, err := eng.CloseTrade(ctx, acctID, id, CloseRequest{ClosePrice: dec(closes[i])})
		require.NoError(t, err)
		realized = realized.Add(*closed.Pnl)
	}

	acct, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	want := dec("100000").Add(realized)
	assert.True(t, acct.Balance.Equal(want),
		"balance %s, want starting + realized = %s", acct.Balance, want)
}

func TestCloseIsRejectedOnSettledTrade(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	trade, err := eng.OpenTrade(ctx, acctID, coveredCallRequest())
	require.NoError(t, err)

	_, err = eng.CloseTrade(ctx, acctID, trade.ID, CloseRequest{ClosePrice: dec("115")})
	require.NoError(t, err)

	before, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)

	// Closing again always fails and never moves the balance.
	for i := 0; i < 3; i++ {
		_, err = eng.CloseTrade(ctx, acctID, trade.ID, CloseRequest{ClosePrice: dec("90")})
		assert.ErrorIs(t, err, ledger.ErrTradeAlreadyClosed)
	}

	after, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(before.Balance))
}

func TestCloseUnknownTrade(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)

	_, err := eng.CloseTrade(context.Background(), acctID, "missing", CloseRequest{ClosePrice: dec("100")})
	assert.ErrorIs(t, err, ledger.ErrTradeNotFound)
}

func TestDeleteTradeKeepsCashEffects(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	trade, err := eng.OpenTrade(ctx, acctID, coveredCallRequest())
	require.NoError(t, err)

	require.NoError(t, eng.DeleteTrade(ctx, acctID, trade.ID))

	acct, err := eng.GetAccount(ctx, acctID)
	require.NoError(t, err)
	assert.Empty(t, acct.Trades)
	// The -9800 entry debit stays on the balance: delete forgets, not undoes.
	assert.True(t, acct.Balance.Equal(dec("90200")), "got %s", acct.Balance)

	assert.ErrorIs(t, eng.DeleteTrade(ctx, acctID, trade.ID), ledger.ErrTradeNotFound)
}

func TestExpireTrade(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	now := testNow
	eng := New(st, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	acct, err := eng.CreateAccount(ctx, "", "USD", dec("100000"))
	require.NoError(t, err)

	req := coveredCallRequest()
	req.Expiration = testNow.Add(24 * time.Hour)
	trade, err := eng.OpenTrade(ctx, acct.ID, req)
	require.NoError(t, err)

	// Too early.
	_, err = eng.ExpireTrade(ctx, acct.ID, trade.ID, dec("100"))
	assert.ErrorIs(t, err, ErrNotExpired)

	// Advance past expiration; the option settles and the terminal status is
	// expired, not closed.
	now = testNow.Add(48 * time.Hour)
	expired, err := eng.ExpireTrade(ctx, acct.ID, trade.ID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusExpired, expired.Status)
	require.NotNil(t, expired.Pnl)
	assert.True(t, expired.Pnl.Equal(dec("200")), "pnl %s", expired.Pnl)

	got, err := eng.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	// -9800 entry + 10000 settlement = +200 net, the realized P&L.
	assert.True(t, got.Balance.Equal(dec("100200")), "balance %s", got.Balance)

	// Expired is terminal: neither close nor expire may run again.
	_, err = eng.CloseTrade(ctx, acct.ID, trade.ID, CloseRequest{ClosePrice: dec("100")})
	assert.ErrorIs(t, err, ledger.ErrTradeAlreadyClosed)
	_, err = eng.ExpireTrade(ctx, acct.ID, trade.ID, dec("100"))
	assert.ErrorIs(t, err, ledger.ErrTradeAlreadyClosed)
}

func TestExpireRejectsSpotTrades(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	trade, err := eng.OpenTrade(ctx, acctID, OpenRequest{
		Type: ledger.TradeTypeSpot, Symbol: "BTC",
		Direction: ledger.DirectionLong, EntryPrice: dec("100"), Quantity: dec("1"),
	})
	require.NoError(t, err)

	_, err = eng.ExpireTrade(ctx, acctID, trade.ID, dec("100"))
	assert.ErrorIs(t, err, ErrNotOption)
}

// failingStore accepts the initial save then refuses everything, simulating a
// store outage mid-flight.
type failingStore struct {
	*store.Memory
	failSaves bool
}

func (f *failingStore) Save(ctx context.Context, acct *ledger.Account) error {
	if f.failSaves {
		return store.ErrUnavailable
	}
	return f.Memory.Save(ctx, acct)
}

func TestStoreFailurePropagatesWithoutPartialState(t *testing.T) {
	t.Parallel()

	fs := &failingStore{Memory: store.NewMemory()}
	eng := New(fs, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	acct, err := eng.CreateAccount(ctx, "", "USD", dec("100000"))
	require.NoError(t, err)
	trade, err := eng.OpenTrade(ctx, acct.ID, coveredCallRequest())
	require.NoError(t, err)

	fs.failSaves = true

	_, err = eng.CloseTrade(ctx, acct.ID, trade.ID, CloseRequest{ClosePrice: dec("115")})
	assert.ErrorIs(t, err, store.ErrUnavailable)

	// The persisted account still shows the trade open at the pre-close
	// balance: the failed settlement left no partial state.
	fs.failSaves = false
	got, err := eng.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("90200")), "balance %s", got.Balance)
	stored, err := got.FindTrade(trade.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusOpen, stored.Status)

	// And an open against a dead store fails without inventing an account.
	fs.failSaves = true
	_, err = eng.OpenTrade(ctx, acct.ID, coveredCallRequest())
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestPnlPercentGuards(t *testing.T) {
	t.Parallel()

	eng, acctID := newTestEngine(t)
	ctx := context.Background()

	// Spot: pnl over entry cost.
	trade, err := eng.OpenTrade(ctx, acctID, OpenRequest{
		Type: ledger.TradeTypeSpot, Symbol: "BTC",
		Direction: ledger.DirectionLong, EntryPrice: dec("100"), Quantity: dec("2"),
	})
	require.NoError(t, err)
	closed, err := eng.CloseTrade(ctx, acctID, trade.ID, CloseRequest{ClosePrice: dec("110")})
	require.NoError(t, err)
	assert.True(t, closed.PnlPercent.Equal(dec("10")), "got %s", closed.PnlPercent)
}
