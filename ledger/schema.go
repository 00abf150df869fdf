package ledger

const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login_id INTEGER NOT NULL UNIQUE,
	password TEXT NOT NULL DEFAULT '',
	server TEXT NOT NULL DEFAULT '',
	alias TEXT NOT NULL DEFAULT '',
	prop_firm TEXT NOT NULL DEFAULT '',
	account_type TEXT NOT NULL DEFAULT '',
	initial_balance REAL NOT NULL DEFAULT 0,
	balance REAL NOT NULL DEFAULT 0,
	risk_per_trade REAL NOT NULL DEFAULT 1,
	target_percent REAL NOT NULL DEFAULT 0,
	investment REAL NOT NULL DEFAULT 0,
	trailing_drawdown BOOLEAN NOT NULL DEFAULT 0,
	daily_drawdown_limit REAL NOT NULL DEFAULT 0,
	max_drawdown_limit REAL NOT NULL DEFAULT 0,
	consistency_rule REAL NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	ticket INTEGER NOT NULL,
	position_id INTEGER,
	symbol TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	open_time DATETIME,
	close_time DATETIME NOT NULL,
	profit REAL NOT NULL DEFAULT 0,
	commission REAL NOT NULL DEFAULT 0,
	swap REAL NOT NULL DEFAULT 0,
	comment TEXT,
	strategy TEXT,
	emotion TEXT,
	mistake TEXT,
	notes TEXT,
	CONSTRAINT unique_trade_per_account UNIQUE (ticket, account_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_account_close ON trades(account_id, close_time);
`
