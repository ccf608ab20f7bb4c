package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/Zee-create-614/papertrader/stats"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runningTally tracks the metrics an observer would accumulate trade by trade
// as settlements happen, independently of the stats package.
type runningTally struct {
	closed, wins, losses int
	winSum, lossSum      decimal.Decimal
	realized             decimal.Decimal
}

func (r *runningTally) observe(pnl decimal.Decimal) {
	r.closed++
	r.realized = r.realized.Add(pnl)
	switch {
	case pnl.IsPositive():
		r.wins++
		r.winSum = r.winSum.Add(pnl)
	case pnl.IsNegative():
		r.losses++
		r.lossSum = r.lossSum.Add(pnl)
	}
}

func (r *runningTally) winRate() float64 {
	if r.closed == 0 {
		return 0
	}
	return float64(r.wins) / float64(r.closed) * 100
}

func (r *runningTally) profitFactor() float64 {
	if r.wins == 0 || r.losses == 0 {
		return 0
	}
	avgWin := r.winSum.Div(decimal.NewFromInt(int64(r.wins)))
	avgLoss := r.lossSum.Div(decimal.NewFromInt(int64(r.losses))).Abs()
	return avgWin.Div(avgLoss).InexactFloat64()
}

func assertSummaryEqual(t *testing.T, want, got stats.Summary) {
	t.Helper()
	assert.Equal(t, want.TotalTrades, got.TotalTrades)
	assert.Equal(t, want.OpenTrades, got.OpenTrades)
	assert.Equal(t, want.ClosedTrades, got.ClosedTrades)
	assert.Equal(t, want.ExpiredTrades, got.ExpiredTrades)
	assert.Equal(t, want.WinningTrades, got.WinningTrades)
	assert.Equal(t, want.LosingTrades, got.LosingTrades)
	assert.InDelta(t, want.WinRate, got.WinRate, 1e-9)
	assert.InDelta(t, want.ProfitFactor, got.ProfitFactor, 1e-9)
	assert.InDelta(t, want.TotalReturnPct, got.TotalReturnPct, 1e-9)
	assert.True(t, want.RealizedPnl.Equal(got.RealizedPnl),
		"realized pnl %s vs %s", want.RealizedPnl, got.RealizedPnl)
}

// Summarizing a freshly loaded account after every settlement must agree with
// metrics tracked incrementally as trades close, and the final numbers must
// not depend on the order the trades were closed in.
func TestStatisticsConsistentAcrossClosingOrders(t *testing.T) {
	t.Parallel()

	exp := testNow.Add(30 * 24 * time.Hour)
	requests := []OpenRequest{
		{Type: ledger.TradeTypeSpot, Symbol: "BTC", Direction: ledger.DirectionLong, EntryPrice: dec("100"), Quantity: dec("2")},
		{Type: ledger.TradeTypeSpot, Symbol: "ETH", Direction: ledger.DirectionShort, EntryPrice: dec("50"), Quantity: dec("3")},
		{Type: ledger.TradeTypeOption, Symbol: "AAPL", Strategy: ledger.StrategyCoveredCall, EntryPrice: dec("100"), Strike: dec("110"), Contracts: 1, Premium: dec("2"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "MSFT", Strategy: ledger.StrategyCashSecuredPut, EntryPrice: dec("300"), Strike: dec("290"), Contracts: 1, Premium: dec("4"), Expiration: exp},
		{Type: ledger.TradeTypeOption, Symbol: "AMD", Strategy: ledger.StrategyBullCallSpread, EntryPrice: dec("150"), Strike: dec("150"), SecondStrike: decPtr("160"), Contracts: 1, Premium: dec("3"), Expiration: exp},
	}
	// Mixed outcomes: +20, -30, +1200, -600, -100.
	closes := []string{"110", "60", "115", "280", "152"}

	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
	}

	ctx := context.Background()
	finals := make([]stats.Summary, len(orders))

	for oi, order := range orders {
		eng := New(store.NewMemory(), WithClock(func() time.Time { return testNow }))
		acct, err := eng.CreateAccount(ctx, "", "USD", dec("100000"))
		require.NoError(t, err)

		ids := make([]string, len(requests))
		for i, req := range requests {
			tr, err := eng.OpenTrade(ctx, acct.ID, req)
			require.NoError(t, err)
			ids[i] = tr.ID
		}

		var tally runningTally
		for _, i := range order {
			closed, err := eng.CloseTrade(ctx, acct.ID, ids[i], CloseRequest{ClosePrice: dec(closes[i])})
			require.NoError(t, err)
			tally.observe(*closed.Pnl)

			// Reload the persisted account; the fresh recompute must match
			// what the incremental observer has seen so far.
			reloaded, err := eng.GetAccount(ctx, acct.ID)
			require.NoError(t, err)
			s := stats.Summarize(reloaded)

			assert.Equal(t, tally.closed, s.ClosedTrades)
			assert.Equal(t, len(requests)-tally.closed, s.OpenTrades)
			assert.Equal(t, tally.wins, s.WinningTrades)
			assert.Equal(t, tally.losses, s.LosingTrades)
			assert.InDelta(t, tally.winRate(), s.WinRate, 1e-9)
			assert.InDelta(t, tally.profitFactor(), s.ProfitFactor, 1e-9)
			assert.True(t, tally.realized.Equal(s.RealizedPnl),
				"order %v: realized %s vs %s", order, tally.realized, s.RealizedPnl)
		}

		reloaded, err := eng.GetAccount(ctx, acct.ID)
		require.NoError(t, err)
		finals[oi] = stats.Summarize(reloaded)
	}

	for i := 1; i < len(finals); i++ {
		assertSummaryEqual(t, finals[0], finals[i])
	}
}
