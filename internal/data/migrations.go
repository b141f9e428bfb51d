package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the single table the edge owns in self-hosted mode. Profiles are
// created once and never deleted, so there is no soft-delete column.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	uid            TEXT PRIMARY KEY,
	email          TEXT NOT NULL,
	role           TEXT NOT NULL CHECK (role IN ('user', 'operator', 'admin')),
	company_name   TEXT NOT NULL DEFAULT '',
	contact_number TEXT NOT NULL DEFAULT '',
	approved       BOOLEAN NOT NULL DEFAULT FALSE,
	is_operator    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS profiles_email_idx ON profiles (email);
`

// Migrate applies the profile schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply profiles schema: %w", err)
	}
	return nil
}
