package diagramconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"

	"gridworkspaces/internal/errs"
)

// MemoryClient keeps diagram configurations in process memory. It backs the
// service when no remote store is configured.
type MemoryClient struct {
	mu    sync.RWMutex
	blobs map[string]json.RawMessage
}

// NewMemoryClient returns an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{blobs: make(map[string]json.RawMessage)}
}

func (m *MemoryClient) CreateOrUpdate(_ context.Context, id string, blob json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	} else if _, ok := m.blobs[id]; !ok {
		return "", notFound("update", id)
	}
	m.blobs[id] = slices.Clone(blob)
	return id, nil
}

func (m *MemoryClient) Duplicate(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[id]
	if !ok {
		return "", notFound("duplicate", id)
	}
	newID := uuid.NewString()
	m.blobs[newID] = slices.Clone(blob)
	return newID, nil
}

func (m *MemoryClient) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return notFound("delete", id)
	}
	delete(m.blobs, id)
	return nil
}

// DeleteMany removes every id that is stored; unknown ids are ignored.
func (m *MemoryClient) DeleteMany(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.blobs, id)
	}
	return nil
}

// Get returns the stored blob.
func (m *MemoryClient) Get(id string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[id]
	return blob, ok
}

// Len returns the number of stored configurations.
func (m *MemoryClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func notFound(op, id string) error {
	return errs.External(op, http.StatusNotFound, fmt.Errorf("diagram config %s not found", id))
}
