package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx so row helpers can
// run inside or outside an explicit transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema and seeds the fixed partner rows.
// Migrations are idempotent so the server can run them on every start.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Periods table. Monetary columns are stored as TEXT to keep exact
-- decimal values; dates are stored as ISO day strings.
CREATE TABLE IF NOT EXISTS periods (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    status TEXT NOT NULL CHECK(status IN ('ACTIVE', 'CLOSED', 'PENDING_NAME')),
    p1_balance_start TEXT NOT NULL,
    p2_balance_start TEXT NOT NULL,
    p1_balance_end TEXT,
    p2_balance_end TEXT,
    opened_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    closed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_project_periods ON periods(project_id);

-- At most one open period per project, enforced by the database itself.
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_period
    ON periods(project_id) WHERE status IN ('ACTIVE', 'PENDING_NAME');

-- Transactions table
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    type TEXT NOT NULL CHECK(type IN ('EXPENSE', 'REVENUE', 'SETTLEMENT')),
    date TEXT NOT NULL,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    paid_by TEXT,
    from_partner TEXT,
    to_partner TEXT,
    created_by TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (period_id) REFERENCES periods(id)
);
CREATE INDEX IF NOT EXISTS idx_period_transactions ON transactions(period_id);
CREATE INDEX IF NOT EXISTS idx_project_transactions ON transactions(project_id);

-- Audit trail. No foreign keys so events outlive the rows they mention.
CREATE TABLE IF NOT EXISTS event_logs (
    id TEXT PRIMARY KEY,
    project_id TEXT,
    period_id TEXT,
    transaction_id TEXT,
    user_id TEXT,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    metadata TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_project_events ON event_logs(project_id);
CREATE INDEX IF NOT EXISTS idx_event_created_at ON event_logs(created_at);

-- Notifications
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('PENDING', 'SENT', 'FAILED')),
    last_error TEXT,
    sent_email_at TIMESTAMP,
    sent_whatsapp_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_transaction_notifications ON notifications(transaction_id);

-- User accounts
CREATE TABLE IF NOT EXISTS user_profiles (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    role TEXT NOT NULL CHECK(role IN ('ADMIN', 'TX_ONLY')),
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Bearer tokens for authentication
CREATE TABLE IF NOT EXISTS auth_tokens (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES user_profiles(id)
);
CREATE INDEX IF NOT EXISTS idx_user_tokens ON auth_tokens(user_id);

-- The two fixed partners, seeded once
CREATE TABLE IF NOT EXISTS partners (
    id TEXT PRIMARY KEY CHECK(id IN ('P1', 'P2')),
    display_name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
INSERT OR IGNORE INTO partners (id, display_name) VALUES ('P1', 'Partner 1');
INSERT OR IGNORE INTO partners (id, display_name) VALUES ('P2', 'Partner 2');
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
