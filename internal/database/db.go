// Package database persists DNS records in SQLite. Records live in the
// authoritative store at runtime; this package is the durable copy behind the
// management API, loaded into the store at startup. Rdata is stored in
// presentation form and round-trips through the dns package constructors.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at path and applies any pending
// schema migrations.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	if err := migrateUp(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Health checks database connectivity.
func (db *DB) Health() error {
	return db.conn.Ping()
}
