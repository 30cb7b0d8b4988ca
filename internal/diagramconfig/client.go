// Package diagramconfig talks to the service that stores the diagram
// configurations of NAD panels. Blobs are opaque here; only their ids matter.
package diagramconfig

import (
	"context"
	"encoding/json"
)

// Client is the narrow surface of the diagram configuration store used by
// the workspace lifecycle. Failures are reported as *errs.ExternalError.
type Client interface {
	// CreateOrUpdate stores blob under id, or under a new id when id is
	// empty, and returns the id.
	CreateOrUpdate(ctx context.Context, id string, blob json.RawMessage) (string, error)
	// Duplicate copies the configuration id and returns the id of the copy.
	Duplicate(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	// DeleteMany deletes every id; ids the store does not know are ignored.
	DeleteMany(ctx context.Context, ids []string) error
}
