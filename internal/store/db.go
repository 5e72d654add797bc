package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &DB{db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	position INTEGER NOT NULL,
	file_id  TEXT NOT NULL,
	kind     TEXT NOT NULL,
	name     TEXT NOT NULL DEFAULT '',
	author   TEXT NOT NULL DEFAULT '',
	owner_id INTEGER NOT NULL DEFAULT 0
);
`

func (d *DB) InitSchema() error {
	_, err := d.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
