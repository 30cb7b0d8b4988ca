package workspace

import (
	"database/sql"
	"fmt"

	"gridworkspaces/internal/dbconn"
)

// schemaTables lists the DDL executed when creating a new store, in
// dependency order. Column types are dialect tokens, see dbconn.Dialect.
var schemaTables = []struct {
	name    string
	columns string
}{
	{"workspaces_configs", `
    id         {id} PRIMARY KEY,
    created_at {id} NOT NULL,
    updated_at {id} NOT NULL`},

	// config_id is NULL for standalone workspaces.
	{"workspaces", `
    id         {id} PRIMARY KEY,
    config_id  {id} NULL REFERENCES workspaces_configs(id),
    name       {text} NOT NULL,
    sort_order {int} NOT NULL DEFAULT 0,
    updated_at {id} NOT NULL`},

	{"panels", `
    id                          {id} PRIMARY KEY,
    workspace_id                {id} NOT NULL REFERENCES workspaces(id),
    sort_order                  {int} NOT NULL DEFAULT 0,
    panel_type                  {name} NOT NULL,
    title                       {text} NOT NULL,
    position_x                  {real} NOT NULL DEFAULT 0,
    position_y                  {real} NOT NULL DEFAULT 0,
    width                       {real} NOT NULL DEFAULT 0,
    height                      {real} NOT NULL DEFAULT 0,
    z_index                     {int} NOT NULL DEFAULT 0,
    order_index                 {int} NOT NULL DEFAULT 0,
    minimized                   {bool} NOT NULL DEFAULT 0,
    maximized                   {bool} NOT NULL DEFAULT 0,
    pinned                      {bool} NOT NULL DEFAULT 0,
    closed                      {bool} NOT NULL DEFAULT 0,
    restore_x                   {real} NULL,
    restore_y                   {real} NULL,
    restore_width               {real} NULL,
    restore_height              {real} NULL,
    metadata                    {text} NULL,
    nad_config_uuid             {id} NULL,
    filter_uuid                 {id} NULL,
    current_filter_uuid         {id} NULL,
    saved_workspace_config_uuid {id} NULL,
    diagram_id                  {name} NULL,
    parent_nad_panel_id         {id} NULL`},

	{"panel_voltage_levels_to_omit", `
    panel_id         {id} NOT NULL REFERENCES panels(id),
    voltage_level_id {name} NOT NULL,
    PRIMARY KEY (panel_id, voltage_level_id)`},

	{"panel_navigation_history", `
    panel_id {id} NOT NULL REFERENCES panels(id),
    seq      {int} NOT NULL,
    entry    {text} NOT NULL,
    PRIMARY KEY (panel_id, seq)`},

	// Schema versioning for future migrations
	{"schema_version", `
    version {int} PRIMARY KEY`},
}

var schemaIndexes = []struct{ name, table, column string }{
	{"idx_workspaces_config", "workspaces", "config_id"},
	{"idx_panels_workspace", "panels", "workspace_id"},
}

// currentSchemaVersion is the latest schema version this code supports.
const currentSchemaVersion = 1

// InitSchema creates all tables if they do not already exist. Statements run
// one at a time since not every driver accepts several per Exec.
func InitSchema(db *sql.DB, dialect dbconn.Dialect) error {
	for _, t := range schemaTables {
		if _, err := db.Exec(dialect.CreateTable(t.name, t.columns)); err != nil {
			return fmt.Errorf("init schema: create %s: %w", t.name, err)
		}
	}
	for _, idx := range schemaIndexes {
		stmt := dialect.CreateIndex(idx.name, idx.table, idx.column)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: create index %s: %w", idx.name, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("init schema: read version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(dialect.Rebind("INSERT INTO schema_version (version) VALUES (?)"), currentSchemaVersion); err != nil {
			return fmt.Errorf("init schema: write version: %w", err)
		}
	}
	return nil
}

// MigrateSchema checks the current schema version and applies incremental
// migrations. Returns an error if the store version is newer than supported.
func MigrateSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("workspace store version %d is newer than supported version %d, please upgrade gridws", version, currentSchemaVersion)
	}
	// Future migrations go here, e.g.:
	// if version < 2 { applyMigrationV2(db); }
	return nil
}
