package workspace

import (
	"slices"

	"github.com/samber/lo"

	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
)

// WorkspacesConfig is the persisted root: an ordered list of workspaces.
type WorkspacesConfig struct {
	ID         string      `json:"id"`
	Workspaces []Workspace `json:"workspaces"`
}

// Workspace is a named layout. It exclusively owns its panels; their order is
// the display order.
type Workspace struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Panels []panel.Panel `json:"panels"`
}

// WorkspaceSummary is a lightweight listing of a workspace (no panels).
type WorkspaceSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Panel returns the panel with the given id.
func (w *Workspace) Panel(id string) (panel.Panel, bool) {
	return lo.Find(w.Panels, func(p panel.Panel) bool { return p.ID == id })
}

// NADPanels returns the network area diagram panels in display order.
func (w *Workspace) NADPanels() []panel.Panel {
	return lo.Filter(w.Panels, func(p panel.Panel, _ int) bool { return p.IsNAD() })
}

// SetPanels replaces the panel list wholesale.
func (w *Workspace) SetPanels(panels []panel.Panel) {
	w.Panels = slices.Clone(panels)
}

// RemovePanels drops the panels whose id is in ids and returns them. Panels
// referencing a removed one are left untouched.
func (w *Workspace) RemovePanels(ids []string) []panel.Panel {
	drop := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })
	removed, kept := lo.FilterReject(w.Panels, func(p panel.Panel, _ int) bool {
		_, ok := drop[p.ID]
		return ok
	})
	w.Panels = kept
	return removed
}

// Upsert updates the panel with the same id, or appends p when there is
// none. It reports whether p was inserted.
func (w *Workspace) Upsert(p panel.Panel) (bool, error) {
	_, idx, found := lo.FindIndexOf(w.Panels, func(existing panel.Panel) bool { return existing.ID == p.ID })
	if !found {
		w.Panels = append(w.Panels, p)
		return true, nil
	}
	updated, err := panel.Update(w.Panels[idx], p)
	if err != nil {
		return false, err
	}
	w.Panels[idx] = updated
	return false, nil
}

// ResourceIDs returns the external diagram configurations owned by the
// workspace's NAD panels. Panels owning nothing are skipped.
func (w *Workspace) ResourceIDs() []string {
	return lo.FilterMap(w.Panels, func(p panel.Panel, _ int) (string, bool) {
		id := p.ResourceID()
		return id, id != ""
	})
}

// DanglingReferences returns the SLD panels whose parent is not a NAD panel of
// this workspace.
func (w *Workspace) DanglingReferences() []panel.Panel {
	nads := lo.SliceToMap(w.NADPanels(), func(p panel.Panel) (string, struct{}) { return p.ID, struct{}{} })
	return lo.Filter(w.Panels, func(p panel.Panel, _ int) bool {
		parent := p.ParentNadPanelID()
		if parent == "" {
			return false
		}
		_, ok := nads[parent]
		return !ok
	})
}

// Clone returns a deep copy of the workspace.
func (w Workspace) Clone() Workspace {
	c := w
	c.Panels = lo.Map(w.Panels, func(p panel.Panel, _ int) panel.Panel { return p.Clone() })
	return c
}

// Summary returns the id and name of the workspace.
func (w Workspace) Summary() WorkspaceSummary {
	return WorkspaceSummary{ID: w.ID, Name: w.Name}
}

// Validate checks the workspace on its own: a name, valid panels, unique
// panel ids, at most one owner per diagram config and SLD parents that
// resolve to a NAD panel of the workspace.
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return errs.NewValidation("name", "is required")
	}
	seen := make(map[string]struct{}, len(w.Panels))
	for _, p := range w.Panels {
		if err := panel.Validate(p); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return errs.NewValidation("panels", "duplicate panel id "+p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if dups := lo.FindDuplicates(w.ResourceIDs()); len(dups) > 0 {
		return errs.NewValidation("savedWorkspaceConfigUuid", "diagram config "+dups[0]+" is owned by more than one panel")
	}
	if dangling := w.DanglingReferences(); len(dangling) > 0 {
		return errs.NewValidation("parentNadPanelId",
			"panel "+dangling[0].ID+" references "+dangling[0].ParentNadPanelID()+" which is not a NAD panel of workspace "+w.Name)
	}
	return nil
}

// Workspace returns the workspace with the given id.
func (c *WorkspacesConfig) Workspace(id string) (Workspace, bool) {
	return lo.Find(c.Workspaces, func(w Workspace) bool { return w.ID == id })
}

// ResourceIDs returns every external diagram configuration owned inside the
// config, across all workspaces.
func (c *WorkspacesConfig) ResourceIDs() []string {
	return lo.FlatMap(c.Workspaces, func(w Workspace, _ int) []string { return w.ResourceIDs() })
}

// PanelIDs returns the ids of every panel of the config.
func (c *WorkspacesConfig) PanelIDs() []string {
	return lo.FlatMap(c.Workspaces, func(w Workspace, _ int) []string {
		return lo.Map(w.Panels, func(p panel.Panel, _ int) string { return p.ID })
	})
}

// AllPanels returns the panels of every workspace, in order.
func (c *WorkspacesConfig) AllPanels() []panel.Panel {
	return lo.FlatMap(c.Workspaces, func(w Workspace, _ int) []panel.Panel { return w.Panels })
}

// Validate checks every workspace and that workspace ids, panel ids and
// owned diagram configs are unique across the whole config.
func (c *WorkspacesConfig) Validate() error {
	for i := range c.Workspaces {
		if err := c.Workspaces[i].Validate(); err != nil {
			return err
		}
	}
	wsIDs := lo.Map(c.Workspaces, func(w Workspace, _ int) string { return w.ID })
	if dups := lo.FindDuplicates(wsIDs); len(dups) > 0 {
		return errs.NewValidation("workspaces", "duplicate workspace id "+dups[0])
	}
	if dups := lo.FindDuplicates(c.PanelIDs()); len(dups) > 0 {
		return errs.NewValidation("panels", "panel id "+dups[0]+" is used by more than one workspace")
	}
	if dups := lo.FindDuplicates(c.ResourceIDs()); len(dups) > 0 {
		return errs.NewValidation("savedWorkspaceConfigUuid", "diagram config "+dups[0]+" is owned by more than one panel")
	}
	return nil
}
