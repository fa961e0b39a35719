package postgres

// Amounts are NUMERIC and cross the wire as text so no precision is lost.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id               TEXT PRIMARY KEY,
		ticker           TEXT NOT NULL UNIQUE,
		isin             TEXT UNIQUE,
		name             TEXT NOT NULL,
		asset_type       TEXT NOT NULL,
		investment_style TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS investments (
		id                 TEXT PRIMARY KEY,
		asset_id           TEXT NOT NULL UNIQUE REFERENCES assets (id),
		currency           TEXT NOT NULL,
		base_currency      TEXT NOT NULL,
		total_units        NUMERIC NOT NULL,
		total_cost         NUMERIC NOT NULL,
		cost_basis         NUMERIC NOT NULL,
		realized_gain_loss NUMERIC NOT NULL,
		latest_price       NUMERIC,
		version            BIGINT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`ALTER TABLE investments ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 0`,
	`CREATE TABLE IF NOT EXISTS investment_transactions (
		id                 TEXT PRIMARY KEY,
		investment_id      TEXT NOT NULL REFERENCES investments (id) ON DELETE CASCADE,
		seq                INTEGER NOT NULL,
		transaction_type   TEXT NOT NULL,
		units              NUMERIC NOT NULL,
		price_per_unit     NUMERIC NOT NULL,
		fees               NUMERIC,
		currency           TEXT NOT NULL,
		exchange_rate      NUMERIC,
		amount             NUMERIC NOT NULL,
		realized_gain_loss NUMERIC,
		name               TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		external_id        TEXT NOT NULL DEFAULT '',
		executed_at        TIMESTAMPTZ,
		brokerage          TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		UNIQUE (investment_id, seq) DEFERRABLE INITIALLY DEFERRED
	)`,
	`CREATE INDEX IF NOT EXISTS investment_transactions_created ON investment_transactions (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id          TEXT PRIMARY KEY,
		amount      NUMERIC NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL,
		tags        TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS incomes (
		id          TEXT PRIMARY KEY,
		amount      NUMERIC NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL,
		tags        TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
}
