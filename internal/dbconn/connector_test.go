package dbconn

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestNewDialect_ValidDrivers(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres", "mysql", "mssql"} {
		d, err := NewDialect(driver)
		if err != nil {
			t.Errorf("NewDialect(%q) returned error: %v", driver, err)
		}
		if d.Name != driver {
			t.Errorf("NewDialect(%q) returned dialect %q", driver, d.Name)
		}
	}
}

func TestNewDialect_InvalidDriver(t *testing.T) {
	_, err := NewDialect("oracle")
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE panels SET title = ? WHERE id = ? AND workspace_id = ?"
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", query},
		{"mysql", query},
		{"postgres", "UPDATE panels SET title = $1 WHERE id = $2 AND workspace_id = $3"},
		{"mssql", "UPDATE panels SET title = @p1 WHERE id = @p2 AND workspace_id = @p3"},
	}
	for _, tt := range tests {
		d, _ := NewDialect(tt.driver)
		if got := d.Rebind(query); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.driver, tt.want, got)
		}
	}
}

func TestCreateTable(t *testing.T) {
	columns := "id {id} PRIMARY KEY, title {text} NOT NULL, x {real}, pinned {bool}"

	d, _ := NewDialect("sqlite")
	got := d.CreateTable("panels", columns)
	want := "CREATE TABLE IF NOT EXISTS panels (id TEXT PRIMARY KEY, title TEXT NOT NULL, x REAL, pinned INTEGER)"
	if got != want {
		t.Errorf("sqlite: expected %q, got %q", want, got)
	}

	d, _ = NewDialect("mssql")
	got = d.CreateTable("panels", columns)
	if !strings.HasPrefix(got, "IF OBJECT_ID(N'panels', N'U') IS NULL CREATE TABLE panels (") {
		t.Errorf("mssql: unexpected DDL %q", got)
	}
	if !strings.Contains(got, "title NVARCHAR(MAX) NOT NULL") {
		t.Errorf("mssql: expected NVARCHAR(MAX) text column, got %q", got)
	}

	d, _ = NewDialect("mysql")
	if d.CreateIndex("idx", "panels", "workspace_id") != "" {
		t.Error("mysql: expected no index statement")
	}
}

func TestDSN(t *testing.T) {
	cfg := ConnectionConfig{Driver: "postgres", Host: "db", Database: "ws", Username: "u", Password: "p"}
	if got := dsn(cfg); got != "host=db port=5432 user=u password=p dbname=ws sslmode=prefer" {
		t.Errorf("postgres: unexpected dsn %q", got)
	}

	cfg.Driver = "mysql"
	cfg.SSLMode = "disable"
	if got := dsn(cfg); !strings.HasPrefix(got, "u:p@tcp(db:3306)/ws?") || !strings.Contains(got, "tls=false") {
		t.Errorf("mysql: unexpected dsn %q", got)
	}

	cfg.Driver = "mssql"
	if got := dsn(cfg); !strings.HasPrefix(got, "sqlserver://u:p@db:1433?") || !strings.Contains(got, "encrypt=disable") {
		t.Errorf("mssql: unexpected dsn %q", got)
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ConnectionConfig
		wantErr bool
	}{
		{"sqlite with path", ConnectionConfig{Driver: "sqlite", Path: "ws.db"}, false},
		{"sqlite without path", ConnectionConfig{Driver: "sqlite"}, true},
		{"postgres without host", ConnectionConfig{Driver: "postgres", Database: "ws"}, true},
		{"mssql complete", ConnectionConfig{Driver: "mssql", Host: "db", Database: "ws"}, false},
		{"unknown driver", ConnectionConfig{Driver: "oracle"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()

	cfg := ConnectionConfig{Driver: "postgres", Host: "db", Database: "ws", Username: "u", PasswordFromKeyring: true}
	if _, err := resolvePassword(cfg); err == nil {
		t.Fatal("expected an error before the password is stored")
	}

	stored := cfg
	stored.Password = "secret"
	if err := SavePassword(stored); err != nil {
		t.Fatalf("SavePassword: %v", err)
	}

	resolved, err := resolvePassword(cfg)
	if err != nil {
		t.Fatalf("resolvePassword: %v", err)
	}
	if resolved.Password != "secret" {
		t.Errorf("expected password from keyring, got %q", resolved.Password)
	}

	if err := DeletePassword(cfg); err != nil {
		t.Fatalf("DeletePassword: %v", err)
	}
	if err := DeletePassword(cfg); err != nil {
		t.Errorf("deleting a missing password should be a no-op, got %v", err)
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ws.db")
	db, dialect, err := Open(ConnectionConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if dialect.Name != "sqlite" {
		t.Errorf("expected sqlite dialect, got %q", dialect.Name)
	}
	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys enabled, got %d", fk)
	}
}
