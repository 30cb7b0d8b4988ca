package dbconn

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var mysqlDialect = Dialect{
	Name:       "mysql",
	DriverName: "mysql",
	types: strings.NewReplacer(
		"{id}", "VARCHAR(64)",
		"{name}", "VARCHAR(255)",
		"{text}", "TEXT",
		"{real}", "DOUBLE",
		"{int}", "INT",
		"{bool}", "TINYINT",
	),
	createTable: createTableIfNotExists,
	// MySQL has no CREATE INDEX IF NOT EXISTS; lookups by owner id go
	// through the primary keys of the child tables.
}

func mysqlDSN(cfg ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	tls := "preferred"
	if cfg.SSLMode == "disable" || cfg.SSLMode == "none" {
		tls = "false"
	} else if cfg.SSLMode == "require" {
		tls = "true"
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.TLSConfig = tls
	// Report matched rather than changed rows so an UPDATE that rewrites
	// identical values still counts as having found its row.
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}
