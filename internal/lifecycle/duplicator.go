// Package lifecycle creates, duplicates, replaces and deletes workspaces and
// keeps the diagram configurations owned by their NAD panels in step with the
// external store.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gridworkspaces/internal/diagramconfig"
	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
	"gridworkspaces/internal/workspace"
)

// Duplicator deep-clones workspaces and configs under fresh ids. SLD parent
// references inside a cloned workspace follow the clone; diagram
// configurations owned by NAD panels are duplicated in the external store so
// that no two panels ever share one.
type Duplicator struct {
	diagrams diagramconfig.Client
	logger   *zap.Logger
}

func NewDuplicator(diagrams diagramconfig.Client, logger *zap.Logger) *Duplicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Duplicator{diagrams: diagrams, logger: logger}
}

// Clone copies ws under a fresh workspace id and fresh panel ids and rewrites
// SLD parents to the cloned NAD panels. Parents outside ws are kept as is.
// Resource pointers are cleared and the source is not modified.
func (d *Duplicator) Clone(ws workspace.Workspace) workspace.Workspace {
	clone := workspace.Workspace{
		ID:     uuid.NewString(),
		Name:   ws.Name,
		Panels: make([]panel.Panel, len(ws.Panels)),
	}

	// All ids first, so every reference can be resolved afterwards.
	newIDs := make(map[string]string, len(ws.Panels))
	for i, p := range ws.Panels {
		clone.Panels[i] = p.Duplicate()
		newIDs[p.ID] = clone.Panels[i].ID
	}

	for i := range clone.Panels {
		p := &clone.Panels[i]
		switch p.Kind {
		case panel.KindSLD:
			if newParent, ok := newIDs[p.SLD.ParentNadPanelID]; ok {
				p.SLD.ParentNadPanelID = newParent
			}
		case panel.KindNAD, panel.KindBase:
		}
	}
	return clone
}

// CloneConfig applies Clone to every workspace of cfg. The result has no
// config id.
func (d *Duplicator) CloneConfig(cfg workspace.WorkspacesConfig) workspace.WorkspacesConfig {
	clone := workspace.WorkspacesConfig{Workspaces: make([]workspace.Workspace, len(cfg.Workspaces))}
	for i, ws := range cfg.Workspaces {
		clone.Workspaces[i] = d.Clone(ws)
	}
	return clone
}

// Workspace clones ws and duplicates the diagram configurations its NAD
// panels own. It returns the ids created in the external store so the caller
// can discard them if persisting the clone fails. On error nothing created
// here is left behind, as far as the store allows.
func (d *Duplicator) Workspace(ctx context.Context, ws workspace.Workspace) (workspace.Workspace, []string, error) {
	clone := d.Clone(ws)
	created, err := d.duplicateResources(ctx, ws, &clone, nil)
	if err != nil {
		return workspace.Workspace{}, nil, err
	}
	return clone, created, nil
}

// Config is Workspace for every workspace of cfg, all or nothing.
func (d *Duplicator) Config(ctx context.Context, cfg workspace.WorkspacesConfig) (workspace.WorkspacesConfig, []string, error) {
	clone := d.CloneConfig(cfg)
	var created []string
	for i := range cfg.Workspaces {
		var err error
		created, err = d.duplicateResources(ctx, cfg.Workspaces[i], &clone.Workspaces[i], created)
		if err != nil {
			return workspace.WorkspacesConfig{}, nil, err
		}
	}
	return clone, created, nil
}

// duplicateResources installs a duplicate of every resource owned in src on
// the matching panel of clone. Panels correspond by position. created
// accumulates the new ids; on failure they are discarded.
func (d *Duplicator) duplicateResources(ctx context.Context, src workspace.Workspace, clone *workspace.Workspace, created []string) ([]string, error) {
	for i, p := range src.Panels {
		oldID := p.ResourceID()
		if oldID == "" {
			continue
		}
		newID, err := d.diagrams.Duplicate(ctx, oldID)
		if err == nil && (newID == "" || newID == oldID) {
			err = errs.External("duplicate", 0, fmt.Errorf("store returned id %q for a copy of %s", newID, oldID))
		}
		if err != nil {
			d.Discard(ctx, created)
			return nil, fmt.Errorf("duplicate diagram config of panel %s: %w", p.ID, err)
		}
		clone.Panels[i].NAD.SavedWorkspaceConfigUUID = newID
		created = append(created, newID)
	}
	return created, nil
}

// Discard deletes ids from the external store, best effort. Failures are
// logged and otherwise ignored.
func (d *Duplicator) Discard(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := d.diagrams.DeleteMany(ctx, ids); err != nil {
		d.logger.Warn("could not discard duplicated diagram configs",
			zap.Strings("ids", ids), zap.Error(err))
		return
	}
	d.logger.Info("discarded duplicated diagram configs", zap.Strings("ids", ids))
}
