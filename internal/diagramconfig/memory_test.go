package diagramconfig

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridworkspaces/internal/errs"
)

func TestMemoryClient_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	id, err := m.CreateOrUpdate(ctx, "", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	same, err := m.CreateOrUpdate(ctx, id, json.RawMessage(`{"a":2}`))
	require.NoError(t, err)
	assert.Equal(t, id, same)

	dup, err := m.Duplicate(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, dup)
	blob, ok := m.Get(dup)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(blob))

	require.NoError(t, m.Delete(ctx, id))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.DeleteMany(ctx, []string{dup, "unknown"}))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryClient_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	_, err := m.Duplicate(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrExternalDependency)
	_, err = m.CreateOrUpdate(ctx, "missing", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, errs.ErrExternalDependency)
	assert.ErrorIs(t, m.Delete(ctx, "missing"), errs.ErrExternalDependency)
}

func TestClientCredentials_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "oauth-client.json")
	creds := ClientCredentials{ClientID: "test-client-id", ClientSecret: "test-client-secret"}

	require.NoError(t, SaveClientCredentials(path, creds))
	loaded, err := LoadClientCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, creds, loaded)

	_, err = LoadClientCredentials(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOAuthConfig_TokenSource(t *testing.T) {
	ctx := context.Background()

	assert.False(t, OAuthConfig{ClientID: "x"}.Enabled())

	_, err := OAuthConfig{TokenURL: "http://127.0.0.1/token"}.TokenSource(ctx)
	assert.Error(t, err, "client id is required")

	path := filepath.Join(t.TempDir(), "oauth-client.json")
	require.NoError(t, SaveClientCredentials(path, ClientCredentials{ClientID: "from-file", ClientSecret: "s"}))
	ts, err := OAuthConfig{TokenURL: "http://127.0.0.1/token", CredentialsFile: path}.TokenSource(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ts)
}
