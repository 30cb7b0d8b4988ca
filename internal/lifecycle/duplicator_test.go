package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gridworkspaces/internal/diagramconfig"
	"gridworkspaces/internal/panel"
	"gridworkspaces/internal/workspace"
)

func TestDuplicator_Clone(t *testing.T) {
	d := NewDuplicator(&diagramconfig.MockClient{}, nil)
	src := gridWorkspace("W", "cfg-1")
	src.ID = "ws-1"
	outside := panel.New(panel.KindSLD, "points elsewhere")
	outside.SLD.ParentNadPanelID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	src.Panels = append(src.Panels, outside)
	before := src.Clone()

	clone := d.Clone(src)

	assert.NotEqual(t, src.ID, clone.ID)
	require.Len(t, clone.Panels, 3)
	assert.Equal(t, clone.Panels[0].ID, clone.Panels[1].ParentNadPanelID())
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", clone.Panels[2].ParentNadPanelID(),
		"references outside the cloned scope are kept")
	assert.Empty(t, clone.Panels[0].ResourceID())
	assert.Equal(t, before, src, "source is not modified")
}

func TestDuplicator_ConfigKeepsReferencesPerWorkspace(t *testing.T) {
	client := &diagramconfig.MockClient{}
	d := NewDuplicator(client, nil)

	a := gridWorkspace("A", "cfg-a")
	b := gridWorkspace("B", "cfg-b")
	// B's SLD points at A's NAD: cross-workspace references are not remapped.
	b.Panels[1].SLD.ParentNadPanelID = a.Panels[0].ID
	cfg := workspace.WorkspacesConfig{ID: "c", Workspaces: []workspace.Workspace{a, b}}

	client.On("Duplicate", mock.Anything, "cfg-a").Return("cfg-a2", nil).Once()
	client.On("Duplicate", mock.Anything, "cfg-b").Return("cfg-b2", nil).Once()

	clone, created, err := d.Config(context.Background(), cfg)
	require.NoError(t, err)
	client.AssertExpectations(t)

	assert.Empty(t, clone.ID)
	assert.Equal(t, []string{"cfg-a2", "cfg-b2"}, created)
	assert.Equal(t, "cfg-a2", clone.Workspaces[0].Panels[0].ResourceID())
	assert.Equal(t, "cfg-b2", clone.Workspaces[1].Panels[0].ResourceID())
	assert.Equal(t, clone.Workspaces[0].Panels[0].ID, clone.Workspaces[0].Panels[1].ParentNadPanelID())
	assert.Equal(t, a.Panels[0].ID, clone.Workspaces[1].Panels[1].ParentNadPanelID())
}

func TestDuplicator_NoResourcesNoCalls(t *testing.T) {
	client := &diagramconfig.MockClient{}
	d := NewDuplicator(client, nil)

	clone, created, err := d.Workspace(context.Background(), gridWorkspace("W", ""))
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, clone.Panels, 2)
	client.AssertNotCalled(t, "Duplicate", mock.Anything, mock.Anything)
}
