package sqlite

import "database/sql"

// schema sets up the shares table. It runs on startup and is idempotent.
// payment_methods is NULL when the client sent none; expires_at is 0 for
// shares that never expire.
const schema = `
CREATE TABLE IF NOT EXISTS shares (
    id TEXT PRIMARY KEY,
    bill_data TEXT NOT NULL,
    people TEXT NOT NULL,
    payment_methods TEXT,
    passcode_hash TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_shares_expires_at ON shares(expires_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
