package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists journal records to a local database. Decimal columns are
// TEXT so values round-trip without float drift.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, account_id, symbol, trade_type, strategy, direction,
		 quantity, contracts, entry_price, close_price, premium, total_premium,
		 opened_at, closed_at, realized_pnl, pnl_percent, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.AccountID, t.Symbol, t.TradeType, t.Strategy, t.Direction,
		t.Quantity.String(), t.Contracts,
		t.EntryPrice.String(), t.ClosePrice.String(),
		t.Premium.String(), t.TotalPremium.String(),
		t.OpenedAt, t.ClosedAt,
		t.RealizedPnl.String(), t.PnlPercent.String(), t.Outcome,
	)
	return err
}

func (j *SQLite) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balances
		(time, account_id, balance, starting_balance, open_trades)
		VALUES (?, ?, ?, ?, ?)`,
		b.Time, b.AccountID,
		b.Balance.String(), b.StartingBalance.String(), b.OpenTrades,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
