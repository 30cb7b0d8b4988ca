package dbconn

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
)

var mssqlDialect = Dialect{
	Name:        "mssql",
	DriverName:  "sqlserver",
	placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
	types: strings.NewReplacer(
		"{id}", "NVARCHAR(64)",
		"{name}", "NVARCHAR(255)",
		"{text}", "NVARCHAR(MAX)",
		"{real}", "FLOAT",
		"{int}", "INT",
		"{bool}", "SMALLINT",
	),
	createTable: func(name, columns string) string {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", name, name, columns)
	},
	createIndex: func(name, table, column string) string {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s') CREATE INDEX %s ON %s (%s)",
			name, name, table, column)
	},
}

func mssqlDSN(cfg ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	encrypt := "true"
	if cfg.SSLMode == "disable" || cfg.SSLMode == "none" {
		encrypt = "disable"
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("encrypt", encrypt)
	q.Set("TrustServerCertificate", "true")
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, port),
		RawQuery: q.Encode(),
	}
	return u.String()
}
