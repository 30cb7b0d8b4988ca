package panel

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gridworkspaces/internal/errs"
)

const (
	nadID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	sldID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

func TestDecode_NAD(t *testing.T) {
	data := `{
		"id": "` + nadID + `",
		"type": "NAD",
		"title": "Area",
		"position": {"x": 0.1, "y": 0.2},
		"size": {"width": 0.5, "height": 0.4},
		"zIndex": 3,
		"savedWorkspaceConfigUuid": "cfg-1",
		"voltageLevelToOmitIds": ["VL2", "VL1", "VL2"],
		"navigationHistory": ["VL1", "VL3"],
		"diagramId": "ignored"
	}`
	p, err := Decode([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindNAD || p.NAD == nil || p.SLD != nil {
		t.Fatalf("expected a NAD panel, got %+v", p)
	}
	if p.ResourceID() != "cfg-1" {
		t.Errorf("expected resource cfg-1, got %q", p.ResourceID())
	}
	if !reflect.DeepEqual(p.NAD.VoltageLevelToOmitIDs, []string{"VL1", "VL2"}) {
		t.Errorf("expected sorted unique voltage levels, got %v", p.NAD.VoltageLevelToOmitIDs)
	}
	if !reflect.DeepEqual(p.NAD.NavigationHistory, []string{"VL1", "VL3"}) {
		t.Errorf("navigation history order must be kept, got %v", p.NAD.NavigationHistory)
	}
	if p.Position.X != 0.1 || p.Size.Height != 0.4 || p.ZIndex != 3 {
		t.Errorf("base fields not decoded: %+v", p)
	}
}

func TestDecode_SLD(t *testing.T) {
	data := `{"id": "` + sldID + `", "type": "SLD", "title": "Line", "diagramId": "VL1", "parentNadPanelId": "` + nadID + `"}`
	p, err := Decode([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if p.ParentNadPanelID() != nadID {
		t.Errorf("expected parent %s, got %q", nadID, p.ParentNadPanelID())
	}
	if p.SLD.DiagramID != "VL1" {
		t.Errorf("expected diagram VL1, got %q", p.SLD.DiagramID)
	}
	if p.ResourceID() != "" {
		t.Errorf("SLD panels own no resource")
	}
}

func TestDecode_AssignsMissingID(t *testing.T) {
	p, err := Decode([]byte(`{"type": "BASE", "title": "Tree"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "missing type", data: `{"title": "x"}`, want: errs.ErrValidation},
		{name: "unknown type", data: `{"type": "CHART", "title": "x"}`, want: errs.ErrInvalidPanelKind},
		{name: "missing title", data: `{"type": "BASE"}`, want: errs.ErrValidation},
		{name: "malformed id", data: `{"id": "p-1", "type": "BASE", "title": "x"}`, want: errs.ErrValidation},
		{name: "malformed parent", data: `{"type": "SLD", "title": "x", "parentNadPanelId": "nad"}`, want: errs.ErrValidation},
		{name: "wrong field type", data: `{"type": "BASE", "title": "x", "zIndex": "high"}`, want: errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	orig := New(KindNAD, "Area")
	orig.RestorePosition = &Position{X: 0.3, Y: 0.3}
	orig.NAD.SavedWorkspaceConfigUUID = "cfg-9"
	orig.NAD.NavigationHistory = []string{"a", "b"}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(orig, back) {
		t.Errorf("round trip mismatch\nwant %+v\ngot  %+v", orig, back)
	}
}

func TestMarshal_OmitsOtherVariantFields(t *testing.T) {
	p := New(KindBase, "Tree")
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"savedWorkspaceConfigUuid", "parentNadPanelId", "navigationHistory"} {
		if _, ok := m[key]; ok {
			t.Errorf("base panel must not carry %q", key)
		}
	}
	if m["type"] != "BASE" {
		t.Errorf("expected type BASE, got %v", m["type"])
	}
}

func TestDuplicate(t *testing.T) {
	orig := New(KindNAD, "Area")
	orig.NAD.SavedWorkspaceConfigUUID = "cfg-1"
	orig.NAD.FilterUUID = "filter"
	orig.NAD.NavigationHistory = []string{"VL1"}

	dup := orig.Duplicate()
	if dup.ID == orig.ID {
		t.Error("duplicate must get a fresh id")
	}
	if dup.ResourceID() != "" {
		t.Errorf("duplicate must not share the resource, got %q", dup.ResourceID())
	}
	if dup.NAD.FilterUUID != "filter" || dup.Title != "Area" {
		t.Errorf("other fields must be copied verbatim: %+v", dup.NAD)
	}
	dup.NAD.NavigationHistory[0] = "changed"
	if orig.NAD.NavigationHistory[0] != "VL1" {
		t.Error("duplicate must not alias the source slices")
	}
	if orig.ResourceID() != "cfg-1" {
		t.Error("source must be left untouched")
	}
}

func TestUpdate_ReplacesEverything(t *testing.T) {
	existing := New(KindSLD, "Old")
	existing.RestoreSize = &Size{Width: 1, Height: 1}
	existing.Pinned = true
	existing.SLD.DiagramID = "VL1"
	existing.SLD.ParentNadPanelID = nadID

	patch := Panel{ID: "ignored", Kind: KindSLD, Title: "New", ZIndex: 4, SLD: &SLDState{DiagramID: "VL2"}}
	got, err := Update(existing, patch)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != existing.ID {
		t.Errorf("id must be kept, got %q", got.ID)
	}
	if got.Title != "New" || got.ZIndex != 4 {
		t.Errorf("fields not replaced: %+v", got)
	}
	if got.RestoreSize != nil || got.Pinned {
		t.Errorf("fields absent from the patch must be reset: %+v", got)
	}
	if got.SLD.ParentNadPanelID != "" || got.SLD.DiagramID != "VL2" {
		t.Errorf("variant fields must be replaced: %+v", got.SLD)
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	existing := New(KindNAD, "Area")
	patch := New(KindNAD, "Area 2")
	patch.NAD.VoltageLevelToOmitIDs = []string{"b", "a"}
	patch.RestorePosition = &Position{X: 0.5}

	once, err := Update(existing, patch)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Update(once, patch)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("applying the same patch twice changed the result\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestUpdate_KindMismatch(t *testing.T) {
	_, err := Update(New(KindNAD, "a"), New(KindSLD, "b"))
	if !errors.Is(err, errs.ErrInvalidPanelKind) {
		t.Errorf("expected ErrInvalidPanelKind, got %v", err)
	}
}
