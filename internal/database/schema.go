package database

import (
	"context"
	"fmt"
)

// schema creates the deal history and settings tables. Analysis results are
// stored as JSONB; only the columns used for listing are broken out.
const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id          UUID PRIMARY KEY,
	address     TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	result      JSONB,
	failure     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS deals_created_at_idx ON deals (created_at DESC);

CREATE TABLE IF NOT EXISTS buy_box (
	id          SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	criteria    JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables used by the repositories if they are missing.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
