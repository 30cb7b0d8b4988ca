package panel

import (
	"encoding/json"

	"github.com/google/uuid"

	"gridworkspaces/internal/errs"
)

// panelJSON is the flat wire shape of a panel: base fields plus the fields of
// whichever variant "type" selects.
type panelJSON struct {
	ID              string    `json:"id,omitempty"`
	Type            *string   `json:"type"`
	Title           *string   `json:"title"`
	Position        Position  `json:"position"`
	Size            Size      `json:"size"`
	ZIndex          int       `json:"zIndex"`
	OrderIndex      int       `json:"orderIndex"`
	Minimized       bool      `json:"minimized"`
	Maximized       bool      `json:"maximized"`
	Pinned          bool      `json:"pinned"`
	Closed          bool      `json:"closed"`
	RestorePosition *Position `json:"restorePosition,omitempty"`
	RestoreSize     *Size     `json:"restoreSize,omitempty"`
	Metadata        string    `json:"metadata,omitempty"`

	// NAD
	NadConfigUUID            string   `json:"nadConfigUuid,omitempty"`
	FilterUUID               string   `json:"filterUuid,omitempty"`
	CurrentFilterUUID        string   `json:"currentFilterUuid,omitempty"`
	SavedWorkspaceConfigUUID string   `json:"savedWorkspaceConfigUuid,omitempty"`
	VoltageLevelToOmitIDs    []string `json:"voltageLevelToOmitIds,omitempty"`

	// SLD
	DiagramID        string `json:"diagramId,omitempty"`
	ParentNadPanelID string `json:"parentNadPanelId,omitempty"`

	// NAD and SLD
	NavigationHistory []string `json:"navigationHistory,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Panel) MarshalJSON() ([]byte, error) {
	kind := string(p.Kind)
	title := p.Title
	w := panelJSON{
		ID:              p.ID,
		Type:            &kind,
		Title:           &title,
		Position:        p.Position,
		Size:            p.Size,
		ZIndex:          p.ZIndex,
		OrderIndex:      p.OrderIndex,
		Minimized:       p.Minimized,
		Maximized:       p.Maximized,
		Pinned:          p.Pinned,
		Closed:          p.Closed,
		RestorePosition: p.RestorePosition,
		RestoreSize:     p.RestoreSize,
		Metadata:        p.Metadata,
	}
	switch p.Kind {
	case KindNAD:
		if p.NAD != nil {
			w.NadConfigUUID = p.NAD.NadConfigUUID
			w.FilterUUID = p.NAD.FilterUUID
			w.CurrentFilterUUID = p.NAD.CurrentFilterUUID
			w.SavedWorkspaceConfigUUID = p.NAD.SavedWorkspaceConfigUUID
			w.VoltageLevelToOmitIDs = p.NAD.VoltageLevelToOmitIDs
			w.NavigationHistory = p.NAD.NavigationHistory
		}
	case KindSLD:
		if p.SLD != nil {
			w.DiagramID = p.SLD.DiagramID
			w.ParentNadPanelID = p.SLD.ParentNadPanelID
			w.NavigationHistory = p.SLD.NavigationHistory
		}
	case KindBase:
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. The "type" discriminant picks
// the variant; "type" and "title" are required. A panel without an id gets a
// fresh one.
func (p *Panel) UnmarshalJSON(data []byte) error {
	var w panelJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return errs.NewValidation("panel", err.Error())
	}
	if w.Type == nil || *w.Type == "" {
		return errs.NewValidation("type", "is required")
	}
	kind, err := ParseKind(*w.Type)
	if err != nil {
		return err
	}
	if w.Title == nil {
		return errs.NewValidation("title", "is required")
	}

	id := w.ID
	if id == "" {
		id = uuid.NewString()
	} else if err := uuid.Validate(id); err != nil {
		return errs.NewValidation("id", "must be a UUID")
	}

	decoded := Panel{
		ID:              id,
		Kind:            kind,
		Title:           *w.Title,
		Position:        w.Position,
		Size:            w.Size,
		ZIndex:          w.ZIndex,
		OrderIndex:      w.OrderIndex,
		Minimized:       w.Minimized,
		Maximized:       w.Maximized,
		Pinned:          w.Pinned,
		Closed:          w.Closed,
		RestorePosition: w.RestorePosition,
		RestoreSize:     w.RestoreSize,
		Metadata:        w.Metadata,
	}
	switch kind {
	case KindNAD:
		decoded.NAD = &NADState{
			NadConfigUUID:            w.NadConfigUUID,
			FilterUUID:               w.FilterUUID,
			CurrentFilterUUID:        w.CurrentFilterUUID,
			SavedWorkspaceConfigUUID: w.SavedWorkspaceConfigUUID,
			VoltageLevelToOmitIDs:    w.VoltageLevelToOmitIDs,
			NavigationHistory:        w.NavigationHistory,
		}
		decoded.NAD.normalize()
	case KindSLD:
		decoded.SLD = &SLDState{
			DiagramID:         w.DiagramID,
			ParentNadPanelID:  w.ParentNadPanelID,
			NavigationHistory: w.NavigationHistory,
		}
	case KindBase:
	}

	if err := Validate(decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// Decode builds a panel from its JSON representation.
func Decode(data []byte) (Panel, error) {
	var p Panel
	if err := json.Unmarshal(data, &p); err != nil {
		return Panel{}, err
	}
	return p, nil
}
