// Package dbconn opens the SQL database that stores workspaces. It knows the
// handful of differences between the supported backends (placeholders,
// column types, conditional DDL) so the repository can stay dialect-neutral.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const pingTimeout = 30 * time.Second

// ConnectionConfig holds the parameters needed to connect to a database backend.
type ConnectionConfig struct {
	Driver   string `json:"driver" yaml:"driver" toml:"driver"` // sqlite, postgres, mysql, mssql
	Path     string `json:"path,omitempty" yaml:"path" toml:"path"` // sqlite only
	Host     string `json:"host,omitempty" yaml:"host" toml:"host"`
	Port     int    `json:"port,omitempty" yaml:"port" toml:"port"`
	Database string `json:"database,omitempty" yaml:"database" toml:"database"`
	Username string `json:"username,omitempty" yaml:"username" toml:"username"`
	Password string `json:"-" yaml:"password" toml:"password"`
	SSLMode  string `json:"sslMode,omitempty" yaml:"sslMode" toml:"ssl-mode"`

	// PasswordFromKeyring loads Password from the OS credential manager,
	// keyed by ProfileName().
	PasswordFromKeyring bool `json:"passwordFromKeyring,omitempty" yaml:"passwordFromKeyring" toml:"password-from-keyring"`
}

// ProfileName identifies the connection in the OS credential manager.
func (cfg ConnectionConfig) ProfileName() string {
	return fmt.Sprintf("%s://%s@%s:%d/%s", cfg.Driver, cfg.Username, cfg.Host, cfg.Port, cfg.Database)
}

// Validate reports missing connection parameters.
func (cfg ConnectionConfig) Validate() error {
	switch cfg.Driver {
	case "sqlite":
		if cfg.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres", "mysql", "mssql":
		if cfg.Host == "" || cfg.Database == "" {
			return fmt.Errorf("database.host and database.database are required for %s", cfg.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	return nil
}

// Dialect captures what differs between backends.
type Dialect struct {
	Name        string
	DriverName  string
	placeholder func(n int) string
	types       *strings.Replacer
	createTable func(name, columns string) string
	createIndex func(name, table, column string) string
}

// NewDialect returns the dialect for the given driver name.
func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect, nil
	case "postgres":
		return postgresDialect, nil
	case "mysql":
		return mysqlDialect, nil
	case "mssql":
		return mssqlDialect, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Rebind rewrites the ? placeholders of query into the dialect's style.
func (d Dialect) Rebind(query string) string {
	if d.placeholder == nil {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateTable renders an idempotent CREATE TABLE. Column types in columns are
// written as {id}, {name}, {text}, {real}, {int} and {bool}.
func (d Dialect) CreateTable(name, columns string) string {
	return d.createTable(name, d.types.Replace(columns))
}

// CreateIndex renders an idempotent CREATE INDEX, or "" when the dialect
// indexes foreign keys on its own.
func (d Dialect) CreateIndex(name, table, column string) string {
	if d.createIndex == nil {
		return ""
	}
	return d.createIndex(name, table, column)
}

func createTableIfNotExists(name, columns string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, columns)
}

func createIndexIfNotExists(name, table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, table, column)
}

// Open connects to the configured backend and returns the connection and its
// dialect. The password is read from the OS keyring when asked to.
func Open(cfg ConnectionConfig) (*sql.DB, Dialect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Dialect{}, err
	}
	dialect, err := NewDialect(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	cfg, err = resolvePassword(cfg)
	if err != nil {
		return nil, Dialect{}, err
	}

	var db *sql.DB
	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	default:
		db, err = sql.Open(dialect.DriverName, dsn(cfg))
	}
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("%s connect: %w", cfg.Driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("%s ping: %w", cfg.Driver, err)
	}
	return db, dialect, nil
}

func dsn(cfg ConnectionConfig) string {
	switch cfg.Driver {
	case "postgres":
		return postgresDSN(cfg)
	case "mysql":
		return mysqlDSN(cfg)
	case "mssql":
		return mssqlDSN(cfg)
	}
	return ""
}
