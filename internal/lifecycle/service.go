package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"gridworkspaces/internal/diagramconfig"
	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
	"gridworkspaces/internal/workspace"
)

// Service orchestrates workspace operations. Each operation runs in one
// local transaction; calls to the diagram configuration store happen before
// or after it, never inside.
type Service struct {
	repo     *workspace.WorkspaceRepo
	diagrams diagramconfig.Client
	dup      *Duplicator
	logger   *zap.Logger
}

func NewService(repo *workspace.WorkspaceRepo, diagrams diagramconfig.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		diagrams: diagrams,
		dup:      NewDuplicator(diagrams, logger),
		logger:   logger,
	}
}

// ---------------------------------------------------------------------------
// Workspaces configs
// ---------------------------------------------------------------------------

// CreateConfig stores a new config under a fresh id. Workspace and panel ids
// supplied by the caller are kept and must not exist yet; missing workspace
// ids are generated. Resource pointers are stored as given.
func (s *Service) CreateConfig(ctx context.Context, cfg workspace.WorkspacesConfig) (workspace.WorkspacesConfig, error) {
	s.logger.Debug("create workspaces config", zap.Int("workspaces", len(cfg.Workspaces)))

	cfg.ID = uuid.NewString()
	for i := range cfg.Workspaces {
		ws := &cfg.Workspaces[i]
		if ws.ID == "" {
			ws.ID = uuid.NewString()
		} else if err := uuid.Validate(ws.ID); err != nil {
			return workspace.WorkspacesConfig{}, errs.NewValidation("workspaces.id", "must be a UUID")
		}
		if ws.Panels == nil {
			ws.Panels = []panel.Panel{}
		}
	}
	if err := cfg.Validate(); err != nil {
		return workspace.WorkspacesConfig{}, err
	}

	err := s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		for _, ws := range cfg.Workspaces {
			exists, err := tx.WorkspaceExists(ctx, ws.ID)
			if err != nil {
				return err
			}
			if exists {
				return errs.NewValidation("workspaces.id", "workspace "+ws.ID+" already exists")
			}
		}
		if err := requireUnusedPanelIDs(ctx, tx, cfg.PanelIDs()); err != nil {
			return err
		}
		if err := requireUnownedResources(ctx, tx, cfg.AllPanels()); err != nil {
			return err
		}
		return tx.SaveConfig(ctx, cfg, workspace.ModeCreate)
	})
	if err != nil {
		return workspace.WorkspacesConfig{}, err
	}
	return cfg, nil
}

func (s *Service) GetConfig(ctx context.Context, id string) (cfg workspace.WorkspacesConfig, err error) {
	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		cfg, err = tx.GetConfig(ctx, id)
		return err
	})
	return cfg, err
}

// DeleteConfig deletes the diagram configurations owned anywhere in the
// config, then the config itself. A failing external delete leaves the
// config untouched.
func (s *Service) DeleteConfig(ctx context.Context, id string) error {
	s.logger.Debug("delete workspaces config", zap.String("config", id))
	cfg, err := s.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deleteResources(ctx, cfg.ResourceIDs()); err != nil {
		return err
	}
	return s.repo.InTx(ctx, func(tx *workspace.Tx) error { return tx.DeleteConfig(ctx, id) })
}

// DuplicateConfig stores a full copy of the config sourceID: every id is new
// and every owned diagram configuration is duplicated.
func (s *Service) DuplicateConfig(ctx context.Context, sourceID string) (workspace.WorkspacesConfig, error) {
	s.logger.Debug("duplicate workspaces config", zap.String("source", sourceID))
	src, err := s.GetConfig(ctx, sourceID)
	if err != nil {
		return workspace.WorkspacesConfig{}, err
	}
	clone, created, err := s.dup.Config(ctx, src)
	if err != nil {
		return workspace.WorkspacesConfig{}, err
	}
	clone.ID = uuid.NewString()

	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		return tx.SaveConfig(ctx, clone, workspace.ModeCreate)
	})
	if err != nil {
		s.dup.Discard(ctx, created)
		return workspace.WorkspacesConfig{}, err
	}
	s.logger.Info("duplicated workspaces config",
		zap.String("source", sourceID), zap.String("config", clone.ID), zap.Int("diagramConfigs", len(created)))
	return clone, nil
}

// ImportConfig stores a copy of cfg under fresh ids, as read from an export.
// Diagram configurations belong to the exported panels and are not carried
// over; the returned list names the pointers that were dropped.
func (s *Service) ImportConfig(ctx context.Context, cfg workspace.WorkspacesConfig) (workspace.WorkspacesConfig, []string, error) {
	dropped := cfg.ResourceIDs()
	clone := s.dup.CloneConfig(cfg)
	created, err := s.CreateConfig(ctx, clone)
	if err != nil {
		return workspace.WorkspacesConfig{}, nil, err
	}
	return created, dropped, nil
}

func (s *Service) ListWorkspaceSummaries(ctx context.Context, configID string) (summaries []workspace.WorkspaceSummary, err error) {
	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		summaries, err = tx.ListWorkspaceSummaries(ctx, configID)
		return err
	})
	return summaries, err
}

// ---------------------------------------------------------------------------
// Workspaces
// ---------------------------------------------------------------------------

func (s *Service) GetWorkspace(ctx context.Context, id string) (ws workspace.Workspace, err error) {
	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		ws, err = tx.GetWorkspace(ctx, id)
		return err
	})
	return ws, err
}

func (s *Service) RenameWorkspace(ctx context.Context, id, name string) error {
	if name == "" {
		return errs.NewValidation("name", "is required")
	}
	return s.repo.InTx(ctx, func(tx *workspace.Tx) error { return tx.RenameWorkspace(ctx, id, name) })
}

// DuplicateWorkspace stores a copy of sourceID as a standalone workspace.
func (s *Service) DuplicateWorkspace(ctx context.Context, sourceID string) (workspace.Workspace, error) {
	s.logger.Debug("duplicate workspace", zap.String("source", sourceID))
	src, err := s.GetWorkspace(ctx, sourceID)
	if err != nil {
		return workspace.Workspace{}, err
	}
	clone, created, err := s.dup.Workspace(ctx, src)
	if err != nil {
		return workspace.Workspace{}, err
	}
	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		return tx.SaveWorkspace(ctx, workspace.Owner{}, clone, workspace.ModeCreate)
	})
	if err != nil {
		s.dup.Discard(ctx, created)
		return workspace.Workspace{}, err
	}
	s.logger.Info("duplicated workspace",
		zap.String("source", sourceID), zap.String("workspace", clone.ID), zap.Int("diagramConfigs", len(created)))
	return clone, nil
}

// DeleteWorkspace deletes the diagram configurations owned by the workspace,
// then the workspace.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	s.logger.Debug("delete workspace", zap.String("workspace", id))
	ws, err := s.GetWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deleteResources(ctx, ws.ResourceIDs()); err != nil {
		return err
	}
	return s.repo.InTx(ctx, func(tx *workspace.Tx) error { return tx.DeleteWorkspace(ctx, id) })
}

// ReplaceWorkspace overwrites the name and panels of targetID with a copy of
// sourceID; the target keeps its id and its place. The target's diagram
// configurations are deleted before the source's are duplicated, so a failed
// duplication leaves the target without its previous diagram state: its NAD
// panels keep pointing at the deleted ids. Deleting those panels or the
// workspace later still works, since DeleteMany ignores ids the store no
// longer knows.
func (s *Service) ReplaceWorkspace(ctx context.Context, targetID, sourceID string) (workspace.Workspace, error) {
	s.logger.Debug("replace workspace", zap.String("target", targetID), zap.String("source", sourceID))
	if targetID == sourceID {
		return workspace.Workspace{}, errs.NewValidation("replaceFrom", "a workspace cannot replace itself")
	}
	target, err := s.GetWorkspace(ctx, targetID)
	if err != nil {
		return workspace.Workspace{}, err
	}
	src, err := s.GetWorkspace(ctx, sourceID)
	if err != nil {
		return workspace.Workspace{}, err
	}

	if err := s.deleteResources(ctx, target.ResourceIDs()); err != nil {
		return workspace.Workspace{}, err
	}
	clone, created, err := s.dup.Workspace(ctx, src)
	if err != nil {
		return workspace.Workspace{}, err
	}

	target.Name = clone.Name
	target.SetPanels(clone.Panels)
	err = s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		return tx.SaveWorkspace(ctx, workspace.Owner{}, target, workspace.ModeUpdate)
	})
	if err != nil {
		s.dup.Discard(ctx, created)
		return workspace.Workspace{}, err
	}
	s.logger.Info("replaced workspace",
		zap.String("target", targetID), zap.String("source", sourceID), zap.Int("diagramConfigs", len(created)))
	return target, nil
}

// ---------------------------------------------------------------------------
// Panels
// ---------------------------------------------------------------------------

// ListPanels returns the panels of a workspace in order, restricted to ids
// when ids is not empty.
func (s *Service) ListPanels(ctx context.Context, workspaceID string, ids []string) ([]panel.Panel, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ws.Panels, nil
	}
	return lo.Filter(ws.Panels, func(p panel.Panel, _ int) bool { return lo.Contains(ids, p.ID) }), nil
}

func (s *Service) GetPanel(ctx context.Context, workspaceID, panelID string) (panel.Panel, error) {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return panel.Panel{}, err
	}
	p, ok := ws.Panel(panelID)
	if !ok {
		return panel.Panel{}, errs.NewNotFound("panel", panelID)
	}
	return p, nil
}

// UpsertPanels updates the panels of the workspace that share an id with one
// of panels and appends the others. It returns the stored state of each
// given panel, in the order given. An update replaces the whole panel: a NAD
// patch without savedWorkspaceConfigUuid clears the pointer and leaves the
// diagram config it named in the external store. A diagram config can be
// owned by one panel only.
func (s *Service) UpsertPanels(ctx context.Context, workspaceID string, panels []panel.Panel) ([]panel.Panel, error) {
	s.logger.Debug("upsert panels", zap.String("workspace", workspaceID), zap.Int("panels", len(panels)))
	ids := lo.Map(panels, func(p panel.Panel, _ int) string { return p.ID })
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return nil, errs.NewValidation("panels", "duplicate panel id "+dups[0])
	}
	for _, p := range panels {
		if err := panel.Validate(p); err != nil {
			return nil, err
		}
	}
	resources := lo.FilterMap(panels, func(p panel.Panel, _ int) (string, bool) { return p.ResourceID(), p.ResourceID() != "" })
	if dups := lo.FindDuplicates(resources); len(dups) > 0 {
		return nil, errs.NewValidation("savedWorkspaceConfigUuid", "diagram config "+dups[0]+" is owned by more than one panel")
	}

	var result []panel.Panel
	err := s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		ws, err := tx.GetWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		owners, err := tx.PanelOwners(ctx, ids)
		if err != nil {
			return err
		}
		if err := requireUnownedResources(ctx, tx, panels); err != nil {
			return err
		}
		for _, p := range panels {
			if owner, ok := owners[p.ID]; ok && owner != workspaceID {
				return errs.NewValidation("id", "panel "+p.ID+" belongs to another workspace")
			}
			if _, err := ws.Upsert(p); err != nil {
				return err
			}
		}

		result = make([]panel.Panel, 0, len(panels))
		for _, id := range ids {
			p, _ := ws.Panel(id)
			if err := requireNADParent(&ws, p); err != nil {
				return err
			}
			result = append(result, p)
		}
		return tx.SaveWorkspace(ctx, workspace.Owner{}, ws, workspace.ModeUpdate)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePanels removes the given panels and the diagram configurations they
// own. SLD panels whose parent is removed keep their dangling reference.
func (s *Service) DeletePanels(ctx context.Context, workspaceID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.logger.Debug("delete panels", zap.String("workspace", workspaceID), zap.Strings("panels", ids))
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	removed := ws.RemovePanels(ids)
	if len(removed) == 0 {
		return nil
	}
	gone := workspace.Workspace{Panels: removed}
	if err := s.deleteResources(ctx, gone.ResourceIDs()); err != nil {
		return err
	}

	return s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		current, err := tx.GetWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		current.RemovePanels(ids)
		return tx.SaveWorkspace(ctx, workspace.Owner{}, current, workspace.ModeUpdate)
	})
}

// SaveNadDiagramConfig stores blob as the diagram configuration of a NAD
// panel, updating the one it owns or creating one, and returns its id.
func (s *Service) SaveNadDiagramConfig(ctx context.Context, workspaceID, panelID string, blob json.RawMessage) (string, error) {
	if len(blob) == 0 || !json.Valid(blob) {
		return "", errs.NewValidation("body", "must be a JSON document")
	}
	p, err := s.nadPanel(ctx, workspaceID, panelID)
	if err != nil {
		return "", err
	}
	existing := p.ResourceID()
	id, err := s.diagrams.CreateOrUpdate(ctx, existing, blob)
	if err != nil {
		return "", fmt.Errorf("save diagram config of panel %s: %w", panelID, err)
	}
	if id == existing {
		return id, nil
	}

	if err := s.setResource(ctx, workspaceID, panelID, id); err != nil {
		if existing == "" {
			s.dup.Discard(ctx, []string{id})
		}
		return "", err
	}
	s.logger.Info("saved diagram config", zap.String("panel", panelID), zap.String("diagramConfig", id))
	return id, nil
}

// DeleteNadDiagramConfig deletes the diagram configuration owned by a NAD
// panel, if any, and clears the panel's pointer.
func (s *Service) DeleteNadDiagramConfig(ctx context.Context, workspaceID, panelID string) error {
	p, err := s.nadPanel(ctx, workspaceID, panelID)
	if err != nil {
		return err
	}
	id := p.ResourceID()
	if id == "" {
		return nil
	}
	if err := s.diagrams.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete diagram config of panel %s: %w", panelID, err)
	}
	s.logger.Info("deleted diagram config", zap.String("panel", panelID), zap.String("diagramConfig", id))
	return s.setResource(ctx, workspaceID, panelID, "")
}

func (s *Service) nadPanel(ctx context.Context, workspaceID, panelID string) (panel.Panel, error) {
	p, err := s.GetPanel(ctx, workspaceID, panelID)
	if err != nil {
		return panel.Panel{}, err
	}
	if !p.IsNAD() {
		return panel.Panel{}, errs.InvalidPanelKindError{PanelID: panelID, Want: string(panel.KindNAD), Got: string(p.Kind)}
	}
	return p, nil
}

func (s *Service) setResource(ctx context.Context, workspaceID, panelID, resourceID string) error {
	return s.repo.InTx(ctx, func(tx *workspace.Tx) error {
		ws, err := tx.GetWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		for i := range ws.Panels {
			if ws.Panels[i].ID == panelID && ws.Panels[i].IsNAD() {
				ws.Panels[i].NAD.SavedWorkspaceConfigUUID = resourceID
				return tx.SaveWorkspace(ctx, workspace.Owner{}, ws, workspace.ModeUpdate)
			}
		}
		return errs.NewNotFound("panel", panelID)
	})
}

// deleteResources deletes ids from the external store in one call. Nothing
// is sent when ids is empty.
func (s *Service) deleteResources(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.diagrams.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("delete diagram configs: %w", err)
	}
	s.logger.Info("deleted diagram configs", zap.Strings("ids", ids))
	return nil
}

func requireUnusedPanelIDs(ctx context.Context, tx *workspace.Tx, ids []string) error {
	owners, err := tx.PanelOwners(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if owner, ok := owners[id]; ok {
			return errs.NewValidation("panels.id", "panel "+id+" already exists in workspace "+owner)
		}
	}
	return nil
}

// requireUnownedResources checks that no stored panel other than the one
// being written owns a diagram config named by panels.
func requireUnownedResources(ctx context.Context, tx *workspace.Tx, panels []panel.Panel) error {
	byResource := make(map[string]string, len(panels))
	for _, p := range panels {
		if id := p.ResourceID(); id != "" {
			byResource[id] = p.ID
		}
	}
	owners, err := tx.ResourceOwners(ctx, lo.Keys(byResource))
	if err != nil {
		return err
	}
	for resourceID, panelID := range byResource {
		if owner, ok := owners[resourceID]; ok && owner != panelID {
			return errs.NewValidation("savedWorkspaceConfigUuid",
				"diagram config "+resourceID+" is already owned by panel "+owner)
		}
	}
	return nil
}

// requireNADParent checks that an SLD panel's parent, if set, is a NAD panel
// of ws.
func requireNADParent(ws *workspace.Workspace, p panel.Panel) error {
	parentID := p.ParentNadPanelID()
	if parentID == "" {
		return nil
	}
	parent, ok := ws.Panel(parentID)
	if !ok || !parent.IsNAD() {
		return errs.NewValidation("parentNadPanelId",
			"panel "+p.ID+" references "+parentID+" which is not a NAD panel of the workspace")
	}
	return nil
}
