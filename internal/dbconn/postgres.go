package dbconn

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = Dialect{
	Name:        "postgres",
	DriverName:  "pgx",
	placeholder: pgPlaceholder,
	types: strings.NewReplacer(
		"{id}", "VARCHAR(64)",
		"{name}", "VARCHAR(255)",
		"{text}", "TEXT",
		"{real}", "DOUBLE PRECISION",
		"{int}", "INTEGER",
		"{bool}", "SMALLINT",
	),
	createTable: createTableIfNotExists,
	createIndex: createIndexIfNotExists,
}

// pgPlaceholder returns $1, $2, ... style placeholders for PostgreSQL.
func pgPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func postgresDSN(cfg ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode)
}
