package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/notetools/tasknote/task"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	mock.Mock
}

// GetTask implements the Store interface
func (m *MockStore) GetTask(ctx context.Context, uid string) (*task.Task, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

// ListTasks implements the Store interface
func (m *MockStore) ListTasks(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

// SaveTask implements the Store interface
func (m *MockStore) SaveTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// DeleteTask implements the Store interface
func (m *MockStore) DeleteTask(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}
