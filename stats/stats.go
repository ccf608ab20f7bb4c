// Package stats derives read-only performance metrics from an account
// snapshot. Everything is recomputed fresh on each call; there is no cached
// state to go stale.
package stats

import (
	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/shopspring/decimal"
)

// Summary holds the derived metrics for one account.
type Summary struct {
	TotalTrades   int `json:"total_trades"`
	OpenTrades    int `json:"open_trades"`
	ClosedTrades  int `json:"closed_trades"`
	ExpiredTrades int `json:"expired_trades"`

	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	// WinRate is the percentage of closed trades with positive P&L.
	WinRate float64 `json:"win_rate"`
	// ProfitFactor is |average win| / |average loss|, 0 when there are no
	// losing trades.
	ProfitFactor float64 `json:"profit_factor"`
	// TotalReturnPct is (balance - startingBalance) / startingBalance * 100.
	TotalReturnPct float64 `json:"total_return_pct"`

	RealizedPnl decimal.Decimal `json:"realized_pnl"`
}

// Open returns the account's open trades in insertion order.
func Open(a *ledger.Account) []ledger.Trade {
	return filter(a, ledger.StatusOpen)
}

// Closed returns the account's closed trades in insertion order.
func Closed(a *ledger.Account) []ledger.Trade {
	return filter(a, ledger.StatusClosed)
}

// Expired returns the account's expired trades in insertion order.
func Expired(a *ledger.Account) []ledger.Trade {
	return filter(a, ledger.StatusExpired)
}

func filter(a *ledger.Account, st ledger.Status) []ledger.Trade {
	var out []ledger.Trade
	for _, t := range a.Trades {
		if t.Status == st {
			out = append(out, t)
		}
	}
	return out
}

// Summarize computes the full metric set for the account. All divisions are
// guarded; a zero denominator yields 0, never an error.
func Summarize(a *ledger.Account) Summary {
	s := Summary{TotalTrades: len(a.Trades)}

	var (
		winSum, lossSum decimal.Decimal
		wins, losses    int
		closed          int
	)

	for _, t := range a.Trades {
		switch t.Status {
		case ledger.StatusOpen:
			s.OpenTrades++
		case ledger.StatusExpired:
			s.ExpiredTrades++
		case ledger.StatusClosed:
			s.ClosedTrades++
			closed++
			if t.Pnl == nil {
				continue
			}
			s.RealizedPnl = s.RealizedPnl.Add(*t.Pnl)
			switch {
			case t.Pnl.IsPositive():
				wins++
				winSum = winSum.Add(*t.Pnl)
			case t.Pnl.IsNegative():
				losses++
				lossSum = lossSum.Add(*t.Pnl)
			}
		}
		// Expired trades also carry realized P&L, but win rate and profit
		// factor are defined over explicitly closed trades.
		if t.Status == ledger.StatusExpired && t.Pnl != nil {
			s.RealizedPnl = s.RealizedPnl.Add(*t.Pnl)
		}
	}

	s.WinningTrades = wins
	s.LosingTrades = losses

	if closed > 0 {
		s.WinRate = float64(wins) / float64(closed) * 100
	}
	if wins > 0 && losses > 0 {
		avgWin := winSum.Div(decimal.NewFromInt(int64(wins)))
		avgLoss := lossSum.Div(decimal.NewFromInt(int64(losses))).Abs()
		if !avgLoss.IsZero() {
			s.ProfitFactor = avgWin.Div(avgLoss).InexactFloat64()
		}
	}
	if !a.StartingBalance.IsZero() {
		s.TotalReturnPct = a.Balance.Sub(a.StartingBalance).
			Div(a.StartingBalance).
			Mul(decimal.NewFromInt(100)).
			InexactFloat64()
	}

	return s
}
