package database

// schemaStatements is the full set of idempotent DDL statements backing
// the entities of the data model. Every statement can be re-run safely,
// resolving the "idempotent migrations are authoritative" decision for
// the source's two conflicting migration implementations.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'virtual',
		cash_balance REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL DEFAULT 'active',
		strategy_id TEXT,
		deleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instruments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		exchange TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT 'USD',
		active INTEGER NOT NULL DEFAULT 1,
		watchlist INTEGER NOT NULL DEFAULT 0,
		overall_score REAL,
		risk_score REAL,
		sector_bucket TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'Long',
		strategy_type TEXT NOT NULL DEFAULT '',
		stock_list_mode TEXT NOT NULL DEFAULT 'Manual',
		stock_list TEXT NOT NULL DEFAULT '',
		stock_list_ai_prompt TEXT NOT NULL DEFAULT '',
		parameters TEXT NOT NULL DEFAULT '{}',
		active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		instrument_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		average_entry_price REAL NOT NULL DEFAULT 0,
		current_price REAL NOT NULL DEFAULT 0,
		unrealized_pnl REAL NOT NULL DEFAULT 0,
		realized_pnl REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(account_id, instrument_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_order_id TEXT NOT NULL UNIQUE,
		account_id TEXT NOT NULL,
		instrument_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		strategy_id TEXT,
		type TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		limit_price REAL,
		stop_price REAL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		filled_quantity REAL NOT NULL DEFAULT 0,
		average_fill_price REAL,
		commission REAL NOT NULL DEFAULT 0,
		submitted_at TEXT NOT NULL,
		filled_at TEXT,
		cancelled_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status_submitted ON orders(status, submitted_at)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		instrument_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		gross_pnl REAL NOT NULL,
		net_pnl REAL NOT NULL,
		percentage_pnl REAL NOT NULL,
		commission REAL NOT NULL DEFAULT 0,
		entry_time TEXT NOT NULL,
		exit_time TEXT NOT NULL,
		holding_period_days REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS market_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instrument_id INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		interval TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL DEFAULT 0,
		vwap REAL NOT NULL DEFAULT 0,
		trade_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(instrument_id, timestamp, interval)
	)`,
	`CREATE TABLE IF NOT EXISTS trading_signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instrument_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		strategy_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		signal_type TEXT NOT NULL,
		strength INTEGER NOT NULL,
		price REAL NOT NULL,
		confidence REAL NOT NULL,
		indicators_used TEXT NOT NULL DEFAULT '{}',
		reason TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		value TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS system_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		module TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		account_id TEXT,
		timestamp TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_system_logs_timestamp ON system_logs(timestamp)`,
}
