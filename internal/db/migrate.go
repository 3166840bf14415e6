package db

import (
	"context"
	"database/sql"
)

type DB struct {
	*sql.DB
}

const accountMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    canonical_key text NOT NULL,
    email text NOT NULL DEFAULT '',
    display_name text NOT NULL DEFAULT '',
    avatar_url text NOT NULL DEFAULT '',
    role text NOT NULL DEFAULT 'USER',
    password_hash text NOT NULL DEFAULT '',
    current_refresh_token text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    deleted_at timestamptz,
    CONSTRAINT accounts_canonical_key_unique UNIQUE (canonical_key)
);

CREATE INDEX IF NOT EXISTS accounts_email_idx
ON accounts (LOWER(email));

CREATE INDEX IF NOT EXISTS accounts_refresh_token_idx
ON accounts (current_refresh_token)
WHERE current_refresh_token <> '';
`

// RunMigration applies the account schema at startup. The unique
// constraint on canonical_key is what makes concurrent first logins for
// the same identity safe; the resolver relies on it, not on check-then-act.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, accountMigration)
	return err
}
