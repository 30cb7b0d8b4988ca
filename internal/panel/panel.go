// Package panel models the panels a workspace is made of. A Panel is a tagged
// union: Kind selects which of the variant blocks (NAD, SLD) is populated, and
// every consumer switches on Kind instead of relying on dynamic dispatch.
package panel

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gridworkspaces/internal/errs"
)

// Kind discriminates panel variants.
type Kind string

const (
	KindBase Kind = "BASE"
	KindNAD  Kind = "NAD"
	KindSLD  Kind = "SLD"
)

// ParseKind returns the Kind named by s, or an InvalidPanelKindError.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBase, KindNAD, KindSLD:
		return Kind(s), nil
	default:
		return "", errs.InvalidPanelKindError{Got: s}
	}
}

// Position is a normalized (0..1) offset inside the workspace viewport.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a normalized (0..1) extent inside the workspace viewport.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NADState holds the network area diagram specific fields.
type NADState struct {
	NadConfigUUID     string
	FilterUUID        string
	CurrentFilterUUID string
	// SavedWorkspaceConfigUUID points at the diagram configuration owned by
	// this panel in the external store. Empty means nothing is allocated.
	SavedWorkspaceConfigUUID string
	// VoltageLevelToOmitIDs is a set, kept sorted and free of duplicates.
	VoltageLevelToOmitIDs []string
	NavigationHistory     []string
}

func (s *NADState) clone() *NADState {
	if s == nil {
		return &NADState{}
	}
	c := *s
	c.VoltageLevelToOmitIDs = slices.Clone(s.VoltageLevelToOmitIDs)
	c.NavigationHistory = slices.Clone(s.NavigationHistory)
	return &c
}

func (s *NADState) normalize() {
	if len(s.VoltageLevelToOmitIDs) == 0 {
		s.VoltageLevelToOmitIDs = nil
		return
	}
	ids := lo.Uniq(s.VoltageLevelToOmitIDs)
	slices.Sort(ids)
	s.VoltageLevelToOmitIDs = ids
}

// SLDState holds the single line diagram specific fields.
type SLDState struct {
	DiagramID string
	// ParentNadPanelID weakly references a NAD panel of the same workspace.
	ParentNadPanelID  string
	NavigationHistory []string
}

func (s *SLDState) clone() *SLDState {
	if s == nil {
		return &SLDState{}
	}
	c := *s
	c.NavigationHistory = slices.Clone(s.NavigationHistory)
	return &c
}

// Panel is one window of a workspace layout.
type Panel struct {
	ID              string
	Kind            Kind
	Title           string
	Position        Position
	Size            Size
	ZIndex          int
	OrderIndex      int
	Minimized       bool
	Maximized       bool
	Pinned          bool
	Closed          bool
	RestorePosition *Position
	RestoreSize     *Size
	Metadata        string

	NAD *NADState
	SLD *SLDState
}

// New returns an empty panel of the given kind with a fresh id.
func New(kind Kind, title string) Panel {
	p := Panel{ID: uuid.NewString(), Kind: kind, Title: title}
	switch kind {
	case KindNAD:
		p.NAD = &NADState{}
	case KindSLD:
		p.SLD = &SLDState{}
	case KindBase:
	}
	return p
}

// IsNAD reports whether p is a network area diagram panel.
func (p Panel) IsNAD() bool { return p.Kind == KindNAD }

// ResourceID returns the id of the external diagram configuration owned by p,
// or "" when p owns none.
func (p Panel) ResourceID() string {
	switch p.Kind {
	case KindNAD:
		if p.NAD == nil {
			return ""
		}
		return p.NAD.SavedWorkspaceConfigUUID
	case KindSLD, KindBase:
		return ""
	}
	return ""
}

// ParentNadPanelID returns the weak parent reference of an SLD panel.
func (p Panel) ParentNadPanelID() string {
	if p.Kind != KindSLD || p.SLD == nil {
		return ""
	}
	return p.SLD.ParentNadPanelID
}

// Clone returns a deep copy of p.
func (p Panel) Clone() Panel {
	c := p
	if p.RestorePosition != nil {
		rp := *p.RestorePosition
		c.RestorePosition = &rp
	}
	if p.RestoreSize != nil {
		rs := *p.RestoreSize
		c.RestoreSize = &rs
	}
	c.NAD, c.SLD = nil, nil
	switch p.Kind {
	case KindNAD:
		c.NAD = p.NAD.clone()
	case KindSLD:
		c.SLD = p.SLD.clone()
	case KindBase:
	}
	return c
}

// Duplicate returns a copy of p under a fresh id. The owned diagram
// configuration pointer is cleared: the caller installs a duplicated
// resource id if there is one.
func (p Panel) Duplicate() Panel {
	dup := p.Clone()
	dup.ID = uuid.NewString()
	switch dup.Kind {
	case KindNAD:
		dup.NAD.SavedWorkspaceConfigUUID = ""
	case KindSLD, KindBase:
	}
	return dup
}

// Update returns existing with every field replaced from patch. Fields the
// patch leaves unset end up unset; nothing is merged. The id and kind of
// existing are kept and the kinds must agree.
func Update(existing, patch Panel) (Panel, error) {
	if patch.Kind != existing.Kind {
		return Panel{}, errs.InvalidPanelKindError{
			PanelID: existing.ID,
			Want:    string(existing.Kind),
			Got:     string(patch.Kind),
		}
	}

	updated := Panel{
		ID:         existing.ID,
		Kind:       existing.Kind,
		Title:      patch.Title,
		Position:   patch.Position,
		Size:       patch.Size,
		ZIndex:     patch.ZIndex,
		OrderIndex: patch.OrderIndex,
		Minimized:  patch.Minimized,
		Maximized:  patch.Maximized,
		Pinned:     patch.Pinned,
		Closed:     patch.Closed,
		Metadata:   patch.Metadata,
	}
	if patch.RestorePosition != nil {
		rp := *patch.RestorePosition
		updated.RestorePosition = &rp
	}
	if patch.RestoreSize != nil {
		rs := *patch.RestoreSize
		updated.RestoreSize = &rs
	}

	switch existing.Kind {
	case KindNAD:
		updated.NAD = patch.NAD.clone()
		updated.NAD.normalize()
	case KindSLD:
		updated.SLD = patch.SLD.clone()
	case KindBase:
	default:
		return Panel{}, errs.InvalidPanelKindError{PanelID: existing.ID, Got: string(existing.Kind)}
	}
	return updated, nil
}

// Validate checks the structural invariants of a single panel.
func Validate(p Panel) error {
	if p.ID == "" {
		return errs.NewValidation("id", "is required")
	}
	if err := uuid.Validate(p.ID); err != nil {
		return errs.NewValidation("id", "must be a UUID")
	}
	switch p.Kind {
	case KindNAD:
		if p.NAD == nil {
			return errs.NewValidation("type", "NAD panel without NAD fields")
		}
	case KindSLD:
		if p.SLD == nil {
			return errs.NewValidation("type", "SLD panel without SLD fields")
		}
		if parent := p.SLD.ParentNadPanelID; parent != "" {
			if err := uuid.Validate(parent); err != nil {
				return errs.NewValidation("parentNadPanelId", "must be a UUID")
			}
		}
	case KindBase:
	case "":
		return errs.NewValidation("type", "is required")
	default:
		return errs.InvalidPanelKindError{PanelID: p.ID, Got: string(p.Kind)}
	}
	return nil
}
