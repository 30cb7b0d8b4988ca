package dbconn

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var sqliteDialect = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite",
	types: strings.NewReplacer(
		"{id}", "TEXT",
		"{name}", "TEXT",
		"{text}", "TEXT",
		"{real}", "REAL",
		"{int}", "INTEGER",
		"{bool}", "INTEGER",
	),
	createTable: createTableIfNotExists,
	createIndex: createIndexIfNotExists,
}

// openSQLite opens (or creates) the database file at cfg.Path. Foreign keys,
// WAL journaling and a busy timeout are set on every pooled connection through
// the DSN.
func openSQLite(cfg ConnectionConfig) (*sql.DB, error) {
	if cfg.Path != ":memory:" {
		// Ensure the parent directory exists.
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	db, err := sql.Open("sqlite", "file:"+cfg.Path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	// between concurrent transactions of the same process.
	db.SetMaxOpenConns(1)
	return db, nil
}
