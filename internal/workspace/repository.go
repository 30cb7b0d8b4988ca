package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gridworkspaces/internal/dbconn"
	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
)

// WriteMode tells the repository whether an aggregate is new or already
// stored. Ids are assigned by the application, so the store cannot tell.
type WriteMode int

const (
	ModeCreate WriteMode = iota
	ModeUpdate
)

func (m WriteMode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	}
	return fmt.Sprintf("WriteMode(%d)", int(m))
}

// Owner places a workspace inside a config. An empty ConfigID stores a
// standalone workspace.
type Owner struct {
	ConfigID  string
	SortOrder int
}

// WorkspaceRepo persists workspace configs, workspaces and panels in a SQL
// database.
type WorkspaceRepo struct {
	db      *sql.DB
	dialect dbconn.Dialect
	now     func() time.Time
}

// NewRepo wraps an open database connection.
func NewRepo(db *sql.DB, dialect dbconn.Dialect) *WorkspaceRepo {
	return &WorkspaceRepo{db: db, dialect: dialect, now: time.Now}
}

// Open connects to the configured store, creates missing tables and checks
// the schema version.
func Open(cfg dbconn.ConnectionConfig) (*WorkspaceRepo, error) {
	db, dialect, err := dbconn.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := InitSchema(db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	if err := MigrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return NewRepo(db, dialect), nil
}

// Close closes the underlying database connection.
func (r *WorkspaceRepo) Close() error { return r.db.Close() }

// Dialect returns the SQL dialect of the store.
func (r *WorkspaceRepo) Dialect() dbconn.Dialect { return r.dialect }

// InTx runs fn inside one transaction, committing when fn returns nil.
func (r *WorkspaceRepo) InTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	tx := &Tx{tx: sqlTx, dialect: r.dialect, stamp: r.now().UTC().Format(time.RFC3339)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tx is the unit of work handed to InTx callbacks.
type Tx struct {
	tx      *sql.Tx
	dialect dbconn.Dialect
	stamp   string
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// ---------------------------------------------------------------------------
// Workspaces configs
// ---------------------------------------------------------------------------

// GetConfig loads a config with all its workspaces and panels.
func (t *Tx) GetConfig(ctx context.Context, id string) (WorkspacesConfig, error) {
	if err := t.requireConfig(ctx, id); err != nil {
		return WorkspacesConfig{}, err
	}
	summaries, err := t.ListWorkspaceSummaries(ctx, id)
	if err != nil {
		return WorkspacesConfig{}, err
	}

	cfg := WorkspacesConfig{ID: id, Workspaces: make([]Workspace, 0, len(summaries))}
	for _, s := range summaries {
		panels, err := t.loadPanels(ctx, s.ID)
		if err != nil {
			return WorkspacesConfig{}, err
		}
		cfg.Workspaces = append(cfg.Workspaces, Workspace{ID: s.ID, Name: s.Name, Panels: panels})
	}
	return cfg, nil
}

// SaveConfig writes cfg and all of its workspaces. With ModeUpdate,
// workspaces missing from cfg are deleted and the others are synced.
func (t *Tx) SaveConfig(ctx context.Context, cfg WorkspacesConfig, mode WriteMode) error {
	switch mode {
	case ModeCreate:
		_, err := t.exec(ctx,
			"INSERT INTO workspaces_configs (id, created_at, updated_at) VALUES (?, ?, ?)",
			cfg.ID, t.stamp, t.stamp,
		)
		if err != nil {
			return fmt.Errorf("insert workspaces_configs: %w", err)
		}
		for i, ws := range cfg.Workspaces {
			if err := t.SaveWorkspace(ctx, Owner{ConfigID: cfg.ID, SortOrder: i}, ws, ModeCreate); err != nil {
				return err
			}
		}
		return nil

	case ModeUpdate:
		res, err := t.exec(ctx, "UPDATE workspaces_configs SET updated_at = ? WHERE id = ?", t.stamp, cfg.ID)
		if err != nil {
			return fmt.Errorf("update workspaces_configs: %w", err)
		}
		if err := requireRow(res, "workspaces config", cfg.ID); err != nil {
			return err
		}
		stored, err := t.ListWorkspaceSummaries(ctx, cfg.ID)
		if err != nil {
			return err
		}
		keep := make(map[string]struct{}, len(cfg.Workspaces))
		for _, ws := range cfg.Workspaces {
			keep[ws.ID] = struct{}{}
		}
		existing := make(map[string]struct{}, len(stored))
		for _, s := range stored {
			existing[s.ID] = struct{}{}
			if _, ok := keep[s.ID]; !ok {
				if err := t.DeleteWorkspace(ctx, s.ID); err != nil {
					return err
				}
			}
		}
		for i, ws := range cfg.Workspaces {
			owner := Owner{ConfigID: cfg.ID, SortOrder: i}
			wsMode := ModeCreate
			if _, ok := existing[ws.ID]; ok {
				wsMode = ModeUpdate
			}
			if err := t.SaveWorkspace(ctx, owner, ws, wsMode); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("save config: unknown write mode %s", mode)
}

// DeleteConfig removes a config and everything it owns.
func (t *Tx) DeleteConfig(ctx context.Context, id string) error {
	summaries, err := t.ListWorkspaceSummaries(ctx, id)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if err := t.DeleteWorkspace(ctx, s.ID); err != nil {
			return err
		}
	}
	res, err := t.exec(ctx, "DELETE FROM workspaces_configs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete workspaces_configs: %w", err)
	}
	return requireRow(res, "workspaces config", id)
}

// ListWorkspaceSummaries returns the id and name of each workspace of a
// config, in order.
func (t *Tx) ListWorkspaceSummaries(ctx context.Context, configID string) ([]WorkspaceSummary, error) {
	if err := t.requireConfig(ctx, configID); err != nil {
		return nil, err
	}
	rows, err := t.query(ctx,
		"SELECT id, name FROM workspaces WHERE config_id = ? ORDER BY sort_order, id", configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []WorkspaceSummary{}
	for rows.Next() {
		var s WorkspaceSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (t *Tx) requireConfig(ctx context.Context, id string) error {
	var found string
	err := t.queryRow(ctx, "SELECT id FROM workspaces_configs WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFound("workspaces config", id)
	}
	return err
}

// ---------------------------------------------------------------------------
// Workspaces
// ---------------------------------------------------------------------------

// GetWorkspace loads a workspace with its panels.
func (t *Tx) GetWorkspace(ctx context.Context, id string) (Workspace, error) {
	var ws Workspace
	err := t.queryRow(ctx, "SELECT id, name FROM workspaces WHERE id = ?", id).Scan(&ws.ID, &ws.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, errs.NewNotFound("workspace", id)
	}
	if err != nil {
		return Workspace{}, err
	}
	ws.Panels, err = t.loadPanels(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

// SaveWorkspace writes ws and its panels. ModeCreate inserts the workspace
// under owner; ModeUpdate keeps its placement, renames it and syncs the panel
// list: stored panels missing from ws are deleted, new ones inserted and the
// rest rewritten.
func (t *Tx) SaveWorkspace(ctx context.Context, owner Owner, ws Workspace, mode WriteMode) error {
	switch mode {
	case ModeCreate:
		_, err := t.exec(ctx,
			`INSERT INTO workspaces (id, config_id, name, sort_order, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			ws.ID, nullIfEmpty(owner.ConfigID), ws.Name, owner.SortOrder, t.stamp,
		)
		if err != nil {
			return fmt.Errorf("insert workspace %s: %w", ws.ID, err)
		}
		for i, p := range ws.Panels {
			if err := t.insertPanel(ctx, ws.ID, i, p); err != nil {
				return err
			}
		}
		return nil

	case ModeUpdate:
		if err := t.RenameWorkspace(ctx, ws.ID, ws.Name); err != nil {
			return err
		}
		stored, err := t.panelIDs(ctx, ws.ID)
		if err != nil {
			return err
		}
		keep := make(map[string]struct{}, len(ws.Panels))
		for _, p := range ws.Panels {
			keep[p.ID] = struct{}{}
		}
		for id := range stored {
			if _, ok := keep[id]; !ok {
				if err := t.deletePanel(ctx, id); err != nil {
					return err
				}
			}
		}
		for i, p := range ws.Panels {
			if _, ok := stored[p.ID]; ok {
				err = t.updatePanel(ctx, ws.ID, i, p)
			} else {
				err = t.insertPanel(ctx, ws.ID, i, p)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("save workspace: unknown write mode %s", mode)
}

// RenameWorkspace changes the name of a workspace.
func (t *Tx) RenameWorkspace(ctx context.Context, id, name string) error {
	res, err := t.exec(ctx, "UPDATE workspaces SET name = ?, updated_at = ? WHERE id = ?", name, t.stamp, id)
	if err != nil {
		return fmt.Errorf("update workspace %s: %w", id, err)
	}
	return requireRow(res, "workspace", id)
}

// DeleteWorkspace removes a workspace and its panels.
func (t *Tx) DeleteWorkspace(ctx context.Context, id string) error {
	for _, child := range panelChildTables {
		q := fmt.Sprintf("DELETE FROM %s WHERE panel_id IN (SELECT id FROM panels WHERE workspace_id = ?)", child)
		if _, err := t.exec(ctx, q, id); err != nil {
			return fmt.Errorf("delete %s: %w", child, err)
		}
	}
	if _, err := t.exec(ctx, "DELETE FROM panels WHERE workspace_id = ?", id); err != nil {
		return fmt.Errorf("delete panels: %w", err)
	}
	res, err := t.exec(ctx, "DELETE FROM workspaces WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete workspace %s: %w", id, err)
	}
	return requireRow(res, "workspace", id)
}

// PanelOwners maps each of ids that is stored to the workspace owning it.
func (t *Tx) PanelOwners(ctx context.Context, ids []string) (map[string]string, error) {
	owners := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT id, workspace_id FROM panels WHERE id IN (" + placeholders(len(ids)) + ")"
	rows, err := t.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, workspaceID string
		if err := rows.Scan(&id, &workspaceID); err != nil {
			return nil, err
		}
		owners[id] = workspaceID
	}
	return owners, rows.Err()
}

// ResourceOwners maps each of the diagram config ids that a stored NAD panel
// owns to that panel's id.
func (t *Tx) ResourceOwners(ctx context.Context, ids []string) (map[string]string, error) {
	owners := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT saved_workspace_config_uuid, id FROM panels WHERE saved_workspace_config_uuid IN (" + placeholders(len(ids)) + ")"
	rows, err := t.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var resourceID, panelID string
		if err := rows.Scan(&resourceID, &panelID); err != nil {
			return nil, err
		}
		owners[resourceID] = panelID
	}
	return owners, rows.Err()
}

// WorkspaceExists reports whether a workspace with the given id is stored.
func (t *Tx) WorkspaceExists(ctx context.Context, id string) (bool, error) {
	var found string
	err := t.queryRow(ctx, "SELECT id FROM workspaces WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ---------------------------------------------------------------------------
// Panels
// ---------------------------------------------------------------------------

var panelChildTables = []string{"panel_voltage_levels_to_omit", "panel_navigation_history"}

// panelColumns are the writable columns of panels after id, in the order
// panelValues produces them.
var panelColumns = []string{
	"workspace_id", "sort_order", "panel_type", "title",
	"position_x", "position_y", "width", "height",
	"z_index", "order_index", "minimized", "maximized", "pinned", "closed",
	"restore_x", "restore_y", "restore_width", "restore_height", "metadata",
	"nad_config_uuid", "filter_uuid", "current_filter_uuid", "saved_workspace_config_uuid",
	"diagram_id", "parent_nad_panel_id",
}

var (
	insertPanelSQL = "INSERT INTO panels (id, " + strings.Join(panelColumns, ", ") +
		") VALUES (" + placeholders(len(panelColumns)+1) + ")"
	updatePanelSQL = "UPDATE panels SET " + strings.Join(panelColumns, " = ?, ") + " = ? WHERE id = ?"
)

const selectPanelsSQL = `SELECT id, panel_type, title, position_x, position_y, width, height,
	z_index, order_index, minimized, maximized, pinned, closed,
	restore_x, restore_y, restore_width, restore_height, metadata,
	nad_config_uuid, filter_uuid, current_filter_uuid, saved_workspace_config_uuid,
	diagram_id, parent_nad_panel_id
	FROM panels WHERE workspace_id = ? ORDER BY sort_order, id`

func panelValues(workspaceID string, sortOrder int, p panel.Panel) []any {
	var restoreX, restoreY, restoreW, restoreH any
	if p.RestorePosition != nil {
		restoreX, restoreY = p.RestorePosition.X, p.RestorePosition.Y
	}
	if p.RestoreSize != nil {
		restoreW, restoreH = p.RestoreSize.Width, p.RestoreSize.Height
	}

	var nadConfig, filter, currentFilter, savedConfig, diagramID, parent any
	switch p.Kind {
	case panel.KindNAD:
		if p.NAD != nil {
			nadConfig = nullIfEmpty(p.NAD.NadConfigUUID)
			filter = nullIfEmpty(p.NAD.FilterUUID)
			currentFilter = nullIfEmpty(p.NAD.CurrentFilterUUID)
			savedConfig = nullIfEmpty(p.NAD.SavedWorkspaceConfigUUID)
		}
	case panel.KindSLD:
		if p.SLD != nil {
			diagramID = nullIfEmpty(p.SLD.DiagramID)
			parent = nullIfEmpty(p.SLD.ParentNadPanelID)
		}
	case panel.KindBase:
	}

	return []any{
		workspaceID, sortOrder, string(p.Kind), p.Title,
		p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height,
		p.ZIndex, p.OrderIndex,
		boolToInt(p.Minimized), boolToInt(p.Maximized), boolToInt(p.Pinned), boolToInt(p.Closed),
		restoreX, restoreY, restoreW, restoreH, nullIfEmpty(p.Metadata),
		nadConfig, filter, currentFilter, savedConfig,
		diagramID, parent,
	}
}

func (t *Tx) insertPanel(ctx context.Context, workspaceID string, sortOrder int, p panel.Panel) error {
	args := append([]any{p.ID}, panelValues(workspaceID, sortOrder, p)...)
	if _, err := t.exec(ctx, insertPanelSQL, args...); err != nil {
		return fmt.Errorf("insert panel %s: %w", p.ID, err)
	}
	return t.insertPanelChildren(ctx, p)
}

// updatePanel rewrites the panel row and replaces its child rows
// (delete + re-insert).
func (t *Tx) updatePanel(ctx context.Context, workspaceID string, sortOrder int, p panel.Panel) error {
	args := append(panelValues(workspaceID, sortOrder, p), p.ID)
	if _, err := t.exec(ctx, updatePanelSQL, args...); err != nil {
		return fmt.Errorf("update panel %s: %w", p.ID, err)
	}
	if err := t.deletePanelChildren(ctx, p.ID); err != nil {
		return err
	}
	return t.insertPanelChildren(ctx, p)
}

func (t *Tx) deletePanel(ctx context.Context, id string) error {
	if err := t.deletePanelChildren(ctx, id); err != nil {
		return err
	}
	if _, err := t.exec(ctx, "DELETE FROM panels WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete panel %s: %w", id, err)
	}
	return nil
}

func (t *Tx) deletePanelChildren(ctx context.Context, id string) error {
	for _, child := range panelChildTables {
		if _, err := t.exec(ctx, "DELETE FROM "+child+" WHERE panel_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", child, err)
		}
	}
	return nil
}

func (t *Tx) insertPanelChildren(ctx context.Context, p panel.Panel) error {
	var history []string
	switch p.Kind {
	case panel.KindNAD:
		if p.NAD == nil {
			return nil
		}
		for _, vl := range p.NAD.VoltageLevelToOmitIDs {
			_, err := t.exec(ctx,
				"INSERT INTO panel_voltage_levels_to_omit (panel_id, voltage_level_id) VALUES (?, ?)",
				p.ID, vl,
			)
			if err != nil {
				return fmt.Errorf("insert voltage level %s of panel %s: %w", vl, p.ID, err)
			}
		}
		history = p.NAD.NavigationHistory
	case panel.KindSLD:
		if p.SLD == nil {
			return nil
		}
		history = p.SLD.NavigationHistory
	case panel.KindBase:
	}

	for i, entry := range history {
		_, err := t.exec(ctx,
			"INSERT INTO panel_navigation_history (panel_id, seq, entry) VALUES (?, ?, ?)",
			p.ID, i, entry,
		)
		if err != nil {
			return fmt.Errorf("insert navigation history of panel %s: %w", p.ID, err)
		}
	}
	return nil
}

func (t *Tx) panelIDs(ctx context.Context, workspaceID string) (map[string]struct{}, error) {
	rows, err := t.query(ctx, "SELECT id FROM panels WHERE workspace_id = ?", workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// loadPanels returns the panels of a workspace in display order, with their
// voltage level sets and navigation histories.
func (t *Tx) loadPanels(ctx context.Context, workspaceID string) ([]panel.Panel, error) {
	rows, err := t.query(ctx, selectPanelsSQL, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	panels := []panel.Panel{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			p                                          panel.Panel
			kind                                       string
			minimized, maximized, pinned, closed       int
			restoreX, restoreY, restoreW, restoreH     sql.NullFloat64
			metadata                                   sql.NullString
			nadConfig, filter, currentFilter, savedCfg sql.NullString
			diagramID, parent                          sql.NullString
		)
		err := rows.Scan(&p.ID, &kind, &p.Title,
			&p.Position.X, &p.Position.Y, &p.Size.Width, &p.Size.Height,
			&p.ZIndex, &p.OrderIndex, &minimized, &maximized, &pinned, &closed,
			&restoreX, &restoreY, &restoreW, &restoreH, &metadata,
			&nadConfig, &filter, &currentFilter, &savedCfg,
			&diagramID, &parent,
		)
		if err != nil {
			return nil, err
		}
		p.Kind, err = panel.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", p.ID, err)
		}
		p.Minimized, p.Maximized = minimized != 0, maximized != 0
		p.Pinned, p.Closed = pinned != 0, closed != 0
		if restoreX.Valid && restoreY.Valid {
			p.RestorePosition = &panel.Position{X: restoreX.Float64, Y: restoreY.Float64}
		}
		if restoreW.Valid && restoreH.Valid {
			p.RestoreSize = &panel.Size{Width: restoreW.Float64, Height: restoreH.Float64}
		}
		p.Metadata = metadata.String

		switch p.Kind {
		case panel.KindNAD:
			p.NAD = &panel.NADState{
				NadConfigUUID:            nadConfig.String,
				FilterUUID:               filter.String,
				CurrentFilterUUID:        currentFilter.String,
				SavedWorkspaceConfigUUID: savedCfg.String,
			}
		case panel.KindSLD:
			p.SLD = &panel.SLDState{
				DiagramID:        diagramID.String,
				ParentNadPanelID: parent.String,
			}
		case panel.KindBase:
		}
		index[p.ID] = len(panels)
		panels = append(panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := t.loadVoltageLevels(ctx, workspaceID, panels, index); err != nil {
		return nil, err
	}
	if err := t.loadNavigationHistory(ctx, workspaceID, panels, index); err != nil {
		return nil, err
	}
	return panels, nil
}

func (t *Tx) loadVoltageLevels(ctx context.Context, workspaceID string, panels []panel.Panel, index map[string]int) error {
	rows, err := t.query(ctx,
		`SELECT v.panel_id, v.voltage_level_id
		 FROM panel_voltage_levels_to_omit v JOIN panels p ON p.id = v.panel_id
		 WHERE p.workspace_id = ? ORDER BY v.panel_id, v.voltage_level_id`, workspaceID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var panelID, vl string
		if err := rows.Scan(&panelID, &vl); err != nil {
			return err
		}
		i, ok := index[panelID]
		if !ok || panels[i].NAD == nil {
			continue
		}
		panels[i].NAD.VoltageLevelToOmitIDs = append(panels[i].NAD.VoltageLevelToOmitIDs, vl)
	}
	return rows.Err()
}

func (t *Tx) loadNavigationHistory(ctx context.Context, workspaceID string, panels []panel.Panel, index map[string]int) error {
	rows, err := t.query(ctx,
		`SELECT h.panel_id, h.entry
		 FROM panel_navigation_history h JOIN panels p ON p.id = h.panel_id
		 WHERE p.workspace_id = ? ORDER BY h.panel_id, h.seq`, workspaceID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var panelID, entry string
		if err := rows.Scan(&panelID, &entry); err != nil {
			return err
		}
		i, ok := index[panelID]
		if !ok {
			continue
		}
		switch p := &panels[i]; p.Kind {
		case panel.KindNAD:
			p.NAD.NavigationHistory = append(p.NAD.NavigationHistory, entry)
		case panel.KindSLD:
			p.SLD.NavigationHistory = append(p.SLD.NavigationHistory, entry)
		case panel.KindBase:
		}
	}
	return rows.Err()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NewNotFound(entity, id)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
