package workspace

import (
	"errors"
	"testing"

	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
)

func sampleWorkspace() Workspace {
	nad := panel.New(panel.KindNAD, "area")
	nad.NAD.SavedWorkspaceConfigUUID = "cfg-1"
	sld := panel.New(panel.KindSLD, "substation")
	sld.SLD.ParentNadPanelID = nad.ID
	base := panel.New(panel.KindBase, "notes")
	emptyNad := panel.New(panel.KindNAD, "other area")
	return Workspace{ID: "ws-1", Name: "W", Panels: []panel.Panel{nad, sld, base, emptyNad}}
}

func TestWorkspace_NADPanelsAndResources(t *testing.T) {
	ws := sampleWorkspace()
	if got := len(ws.NADPanels()); got != 2 {
		t.Errorf("expected 2 NAD panels, got %d", got)
	}
	ids := ws.ResourceIDs()
	if len(ids) != 1 || ids[0] != "cfg-1" {
		t.Errorf("expected [cfg-1], got %v", ids)
	}
}

func TestWorkspace_RemovePanelsLeavesDanglingParent(t *testing.T) {
	ws := sampleWorkspace()
	nadID := ws.Panels[0].ID

	removed := ws.RemovePanels([]string{nadID, "not-there"})
	if len(removed) != 1 || removed[0].ID != nadID {
		t.Fatalf("expected only the NAD panel removed, got %v", removed)
	}
	if len(ws.Panels) != 3 {
		t.Fatalf("expected 3 panels left, got %d", len(ws.Panels))
	}
	if ws.Panels[0].ParentNadPanelID() != nadID {
		t.Error("SLD parent should not be fixed up on delete")
	}
	if got := len(ws.DanglingReferences()); got != 1 {
		t.Errorf("expected 1 dangling reference, got %d", got)
	}
}

func TestWorkspace_Upsert(t *testing.T) {
	ws := sampleWorkspace()

	added := panel.New(panel.KindBase, "new")
	inserted, err := ws.Upsert(added)
	if err != nil || !inserted {
		t.Fatalf("expected insert, got inserted=%v err=%v", inserted, err)
	}
	if ws.Panels[len(ws.Panels)-1].ID != added.ID {
		t.Error("inserted panel should be appended")
	}

	patch := ws.Panels[2]
	patch.Title = "renamed"
	patch.Pinned = true
	inserted, err = ws.Upsert(patch)
	if err != nil || inserted {
		t.Fatalf("expected update, got inserted=%v err=%v", inserted, err)
	}
	if ws.Panels[2].Title != "renamed" || !ws.Panels[2].Pinned {
		t.Errorf("update not applied: %+v", ws.Panels[2])
	}

	wrongKind := panel.New(panel.KindSLD, "x")
	wrongKind.ID = ws.Panels[0].ID
	if _, err := ws.Upsert(wrongKind); !errors.Is(err, errs.ErrInvalidPanelKind) {
		t.Errorf("expected invalid panel kind, got %v", err)
	}
}

func TestWorkspace_Validate(t *testing.T) {
	ws := sampleWorkspace()
	if err := ws.Validate(); err != nil {
		t.Fatalf("expected valid workspace, got %v", err)
	}

	noName := sampleWorkspace()
	noName.Name = ""
	if err := noName.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("missing name: expected validation error, got %v", err)
	}

	dup := sampleWorkspace()
	dup.Panels = append(dup.Panels, dup.Panels[2])
	if err := dup.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("duplicate id: expected validation error, got %v", err)
	}

	sharedResource := sampleWorkspace()
	sharedResource.Panels[3].NAD.SavedWorkspaceConfigUUID = "cfg-1"
	if err := sharedResource.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("shared diagram config: expected validation error, got %v", err)
	}

	// An SLD pointing at a non-NAD panel is as bad as one pointing nowhere.
	badParent := sampleWorkspace()
	badParent.Panels[1].SLD.ParentNadPanelID = badParent.Panels[2].ID
	if err := badParent.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("parent not NAD: expected validation error, got %v", err)
	}
}

func TestWorkspace_CloneIsDeep(t *testing.T) {
	ws := sampleWorkspace()
	c := ws.Clone()
	c.Panels[0].NAD.SavedWorkspaceConfigUUID = "changed"
	c.Panels[0].Title = "changed"
	if ws.Panels[0].NAD.SavedWorkspaceConfigUUID != "cfg-1" || ws.Panels[0].Title != "area" {
		t.Error("mutating the clone changed the original")
	}
}

func TestWorkspacesConfig_Validate(t *testing.T) {
	a := sampleWorkspace()
	b := a.Clone()
	b.ID = "ws-2"
	cfg := WorkspacesConfig{ID: "c", Workspaces: []Workspace{a, b}}

	if err := cfg.Validate(); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("shared panel ids across workspaces: expected validation error, got %v", err)
	}

	// Distinct panels, but both workspaces claim the same diagram config.
	c := sampleWorkspace()
	c.ID = "ws-2"
	cfg.Workspaces[1] = c
	err := cfg.Validate()
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("shared diagram config across workspaces: expected validation error, got %v", err)
	}
	var verr errs.ValidationError
	if !errors.As(err, &verr) || verr.Field != "savedWorkspaceConfigUuid" {
		t.Errorf("expected the diagram config to be reported, got %v", err)
	}
	c.Panels[0].NAD.SavedWorkspaceConfigUUID = "cfg-2"
	cfg.Workspaces[1] = c
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Workspaces[1] = Workspace{ID: "ws-2", Name: "empty"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	if got := cfg.ResourceIDs(); len(got) != 1 {
		t.Errorf("expected one resource id, got %v", got)
	}
	if _, ok := cfg.Workspace("ws-2"); !ok {
		t.Error("expected to find ws-2")
	}
}
