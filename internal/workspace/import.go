package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"gridworkspaces/internal/panel"
)

// ImportResult reports the outcome of reading an exported config.
type ImportResult struct {
	WorkspacesImported int      `json:"workspacesImported"`
	PanelsImported     int      `json:"panelsImported"`
	Warnings           []string `json:"warnings"`
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// --- Exported document (the JSON written by Export) ---
// Panels are kept raw so one bad panel does not reject the whole file.

type exportedConfig struct {
	ID         string              `json:"id,omitempty"`
	Workspaces []exportedWorkspace `json:"workspaces"`
}

type exportedWorkspace struct {
	ID     string            `json:"id,omitempty"`
	Name   string            `json:"name"`
	Panels []json.RawMessage `json:"panels"`
}

// Export renders cfg as an indented JSON document that ReadExport accepts.
func Export(cfg WorkspacesConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export config %s: %w", cfg.ID, err)
	}
	return append(data, '\n'), nil
}

// ReadExport reads an exported config from path. See ParseExport.
func ReadExport(path string) (WorkspacesConfig, ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkspacesConfig{}, ImportResult{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return ParseExport(data)
}

// ParseExport validates and normalizes an exported config. Problems that
// only affect part of the document are repaired or skipped and reported as
// warnings: unnamed workspaces get a name, malformed ids are replaced, invalid
// or repeated panels are dropped and SLD parents that do not resolve inside
// their workspace are cleared. The returned config has no id.
func ParseExport(data []byte) (WorkspacesConfig, ImportResult, error) {
	result := ImportResult{Warnings: []string{}}

	var doc exportedConfig
	if err := json.Unmarshal(data, &doc); err != nil {
		return WorkspacesConfig{}, result, fmt.Errorf("parse export: %w", err)
	}

	cfg := WorkspacesConfig{Workspaces: make([]Workspace, 0, len(doc.Workspaces))}
	seenWorkspaces := make(map[string]struct{})
	seenPanels := make(map[string]struct{})

	for i, ew := range doc.Workspaces {
		ws := Workspace{ID: ew.ID, Name: ew.Name, Panels: []panel.Panel{}}
		if ws.Name == "" {
			ws.Name = fmt.Sprintf("Workspace %d", i+1)
			result.warnf("workspace %d has no name; using %q", i+1, ws.Name)
		}
		if _, dup := seenWorkspaces[ws.ID]; ws.ID == "" || uuid.Validate(ws.ID) != nil || dup {
			if ws.ID != "" {
				result.warnf("workspace %q: id %q is invalid or repeated; assigning a new one", ws.Name, ws.ID)
			}
			ws.ID = uuid.NewString()
		}
		seenWorkspaces[ws.ID] = struct{}{}

		for j, raw := range ew.Panels {
			p, err := panel.Decode(raw)
			if err != nil {
				result.warnf("workspace %q panel %d: %s; skipped", ws.Name, j+1, err.Error())
				continue
			}
			if _, dup := seenPanels[p.ID]; dup {
				result.warnf("workspace %q panel %d: id %s already used; skipped", ws.Name, j+1, p.ID)
				continue
			}
			seenPanels[p.ID] = struct{}{}
			ws.Panels = append(ws.Panels, p)
		}

		for _, dangling := range ws.DanglingReferences() {
			result.warnf("workspace %q panel %s: parent %s is not a NAD panel of the workspace; cleared",
				ws.Name, dangling.ID, dangling.ParentNadPanelID())
			for k := range ws.Panels {
				if ws.Panels[k].ID == dangling.ID {
					ws.Panels[k].SLD.ParentNadPanelID = ""
				}
			}
		}

		cfg.Workspaces = append(cfg.Workspaces, ws)
		result.WorkspacesImported++
		result.PanelsImported += len(ws.Panels)
	}
	return cfg, result, nil
}
