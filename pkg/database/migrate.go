package database

import (
	"context"
	"fmt"
	"log/slog"
)

// schema is applied idempotently at startup. The unique index on
// agreements(user_email) backs the one-agreement-per-user invariant so that
// concurrent submissions cannot both insert.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		email       TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL DEFAULT 'user',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS apartments (
		id           TEXT PRIMARY KEY,
		unit_number  TEXT NOT NULL,
		floor        INTEGER NOT NULL DEFAULT 0,
		block        TEXT NOT NULL DEFAULT '',
		rent         DOUBLE PRECISION NOT NULL,
		availability TEXT NOT NULL DEFAULT 'available',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS agreements (
		id           TEXT PRIMARY KEY,
		user_email   TEXT NOT NULL,
		user_name    TEXT NOT NULL DEFAULT '',
		apartment_id TEXT NOT NULL REFERENCES apartments(id),
		unit_number  TEXT NOT NULL DEFAULT '',
		floor        INTEGER NOT NULL DEFAULT 0,
		block        TEXT NOT NULL DEFAULT '',
		rent         DOUBLE PRECISION NOT NULL DEFAULT 0,
		status       TEXT NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		accept_date  TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS agreements_user_email_key ON agreements (user_email)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id               TEXT PRIMARY KEY,
		code             TEXT NOT NULL UNIQUE,
		description      TEXT NOT NULL DEFAULT '',
		discount_percent DOUBLE PRECISION NOT NULL,
		available        BOOLEAN NOT NULL DEFAULT true,
		expires_at       TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           TEXT PRIMARY KEY,
		user_email   TEXT NOT NULL,
		apartment_id TEXT,
		month        TEXT NOT NULL DEFAULT '',
		amount       DOUBLE PRECISION NOT NULL,
		coupon_code  TEXT,
		payment_date TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS payments_user_email_idx ON payments (user_email, payment_date DESC)`,
	`CREATE TABLE IF NOT EXISTS announcements (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		author      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate bootstraps the schema
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	cp.logger.Info("schema up to date", slog.Int("statements", len(schema)))
	return nil
}
