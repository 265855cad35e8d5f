package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
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

// RunMigrations applies the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Users table
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('Admin', 'Worker', 'Client')),
    company TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    weekly_capacity REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_user_role ON users(role);

-- Quotes table
CREATE TABLE IF NOT EXISTS quotes (
    id TEXT PRIMARY KEY,
    project_type TEXT NOT NULL CHECK(project_type IN ('Simple Conversion', 'Creative Redesign', 'Instructional Upgrade')),
    page_count INTEGER NOT NULL,
    total_cost REAL NOT NULL,
    time_allowance INTEGER NOT NULL,
    client_name TEXT NOT NULL,
    client_email TEXT NOT NULL,
    client_company TEXT NOT NULL DEFAULT '',
    client_phone TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('Pending', 'Approved', 'Rejected')),
    summary TEXT NOT NULL DEFAULT '',
    suggestion_rationale TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_quote_status ON quotes(status);

-- Quote source files (ordered)
CREATE TABLE IF NOT EXISTS quote_files (
    quote_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    uploaded_at TIMESTAMP NOT NULL,
    PRIMARY KEY (quote_id, position),
    FOREIGN KEY (quote_id) REFERENCES quotes(id)
);

-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    quote_id TEXT NOT NULL,
    project_type TEXT NOT NULL CHECK(project_type IN ('Simple Conversion', 'Creative Redesign', 'Instructional Upgrade')),
    page_count INTEGER NOT NULL,
    total_cost REAL NOT NULL,
    time_allowance INTEGER NOT NULL,
    client_name TEXT NOT NULL,
    client_email TEXT NOT NULL,
    client_company TEXT NOT NULL DEFAULT '',
    client_phone TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('Pending Assignment', 'In Progress', 'Ready for Review', 'Completed', 'On Hold')),
    assigned_to TEXT,
    deadline TEXT,
    hours_used REAL NOT NULL DEFAULT 0,
    summary TEXT NOT NULL DEFAULT '',
    suggestion_rationale TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (quote_id) REFERENCES quotes(id),
    FOREIGN KEY (assigned_to) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_project_status ON projects(status);
CREATE INDEX IF NOT EXISTS idx_project_assignee ON projects(assigned_to);
CREATE INDEX IF NOT EXISTS idx_project_client_email ON projects(client_email);

-- Project files: sources carried from the quote plus completed uploads
CREATE TABLE IF NOT EXISTS project_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('source', 'completed')),
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    uploaded_at TIMESTAMP NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_project_files ON project_files(project_id, kind);

-- Project activity log; append-only, insertion order is rowid order
CREATE TABLE IF NOT EXISTS project_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    author TEXT NOT NULL,
    author_id TEXT NOT NULL,
    entry_type TEXT NOT NULL CHECK(entry_type IN ('comment', 'hours', 'status_change', 'file_upload')),
    content TEXT NOT NULL,
    hours_logged REAL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_log_project ON project_log(project_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
