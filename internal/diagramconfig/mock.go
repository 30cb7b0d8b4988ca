package diagramconfig

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateOrUpdate(ctx context.Context, id string, blob json.RawMessage) (string, error) {
	args := m.Called(ctx, id, blob)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Duplicate(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClient) DeleteMany(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
