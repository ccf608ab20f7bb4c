package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	trade_type TEXT NOT NULL,
	strategy TEXT NOT NULL,
	direction TEXT NOT NULL,
	quantity TEXT NOT NULL,
	contracts INTEGER NOT NULL,
	entry_price TEXT NOT NULL,
	close_price TEXT NOT NULL,
	premium TEXT NOT NULL,
	total_premium TEXT NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL,
	realized_pnl TEXT NOT NULL,
	pnl_percent TEXT NOT NULL,
	outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades(closed_at);

CREATE TABLE IF NOT EXISTS balances (
	time DATETIME NOT NULL,
	account_id TEXT NOT NULL,
	balance TEXT NOT NULL,
	starting_balance TEXT NOT NULL,
	open_trades INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_balances_time ON balances(time);
`
