package diagramconfig

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridworkspaces/internal/errs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	c, err := NewHTTPClient(context.Background(), opts)
	require.NoError(t, err)
	return c
}

func TestHTTPClient_Requests(t *testing.T) {
	type seen struct {
		method, path, query, body string
	}
	var requests []seen
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, seen{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`"new-id"`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}, Options{})
	ctx := context.Background()

	id, err := c.CreateOrUpdate(ctx, "", json.RawMessage(`{"zoom":1}`))
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)

	id, err = c.CreateOrUpdate(ctx, "cfg-1", json.RawMessage(`{"zoom":2}`))
	require.NoError(t, err)
	assert.Equal(t, "cfg-1", id)

	id, err = c.Duplicate(ctx, "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)

	require.NoError(t, c.Delete(ctx, "cfg-1"))
	require.NoError(t, c.DeleteMany(ctx, []string{"a", "b"}))

	assert.Equal(t, []seen{
		{http.MethodPost, "/v1/diagram-configs", "", `{"zoom":1}`},
		{http.MethodPut, "/v1/diagram-configs/cfg-1", "", `{"zoom":2}`},
		{http.MethodPost, "/v1/diagram-configs", "duplicateFrom=cfg-1", ""},
		{http.MethodDelete, "/v1/diagram-configs/cfg-1", "", ""},
		{http.MethodDelete, "/v1/diagram-configs", "", `["a","b"]`},
	}, requests)
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}, Options{})

	_, err := c.Duplicate(context.Background(), "cfg-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrExternalDependency)

	var extErr *errs.ExternalError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, http.StatusServiceUnavailable, extErr.Status)
	assert.Equal(t, "duplicate", extErr.Op)
	assert.Contains(t, extErr.Error(), "store unavailable")
	assert.Equal(t, int32(1), calls.Load(), "no retries by default")
}

func TestHTTPClient_DeleteManyUnknownIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown diagram config", http.StatusNotFound)
	}, Options{})

	require.NoError(t, c.DeleteMany(context.Background(), []string{"gone"}))

	err := c.Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, errs.ErrExternalDependency, "single deletes still report unknown ids")
}

func TestHTTPClient_RetryMax(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}, Options{RetryMax: 2})
	// Keep the test fast.
	c.http.RetryWaitMin = 0
	c.http.RetryWaitMax = 0

	require.NoError(t, c.Delete(context.Background(), "cfg-1"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(context.Background(), Options{BaseURL: url})
	require.NoError(t, err)
	err = c.DeleteMany(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, errs.ErrExternalDependency)
}

func TestHTTPClient_OAuth(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, Options{OAuth: OAuthConfig{ClientID: "gridws", ClientSecret: "s3cret", TokenURL: tokenSrv.URL}})

	require.NoError(t, c.Delete(context.Background(), "cfg-1"))
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	_, err := NewHTTPClient(context.Background(), Options{BaseURL: "not a url"})
	assert.Error(t, err)
}
