package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends journal records to two flat files, one for trades and one for
// balance snapshots.
type CSV struct {
	trades  *csv.Writer
	balance *csv.Writer
	tf, bf  *os.File
}

func NewCSV(tradesPath, balancePath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	bf, err := os.Create(balancePath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	bw := csv.NewWriter(bf)

	if err := tw.Write([]string{
		"trade_id", "account_id", "symbol", "trade_type", "strategy", "direction",
		"quantity", "contracts", "entry_price", "close_price", "premium",
		"total_premium", "opened_at", "closed_at", "realized_pnl", "pnl_percent",
		"outcome",
	}); err != nil {
		return nil, err
	}
	if err := bw.Write([]string{
		"time", "account_id", "balance", "starting_balance", "open_trades",
	}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	bw.Flush()
	if err := bw.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, balance: bw, tf: tf, bf: bf}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	if err := j.trades.Write([]string{
		t.TradeID,
		t.AccountID,
		t.Symbol,
		t.TradeType,
		t.Strategy,
		t.Direction,
		t.Quantity.String(),
		strconv.FormatInt(t.Contracts, 10),
		t.EntryPrice.String(),
		t.ClosePrice.String(),
		t.Premium.String(),
		t.TotalPremium.String(),
		t.OpenedAt.Format(time.RFC3339),
		t.ClosedAt.Format(time.RFC3339),
		t.RealizedPnl.String(),
		t.PnlPercent.String(),
		t.Outcome,
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordBalance(b BalanceSnapshot) error {
	if err := j.balance.Write([]string{
		b.Time.Format(time.RFC3339),
		b.AccountID,
		b.Balance.String(),
		b.StartingBalance.String(),
		strconv.Itoa(b.OpenTrades),
	}); err != nil {
		return err
	}
	j.balance.Flush()
	return j.balance.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.balance.Flush()
	if err := j.balance.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.bf.Close()
}
