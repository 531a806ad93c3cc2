// memory based implementation for testing and embedding purposes
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/notetools/tasknote/store"
	"github.com/notetools/tasknote/task"
)

// Store implements the store.Store interface using in-memory maps
type Store struct {
	mu    sync.RWMutex
	tasks map[string]task.Task // key: UID
}

// New creates a new in-memory task store
func New() *Store {
	return &Store{
		tasks: make(map[string]task.Task),
	}
}

func (s *Store) GetTask(_ context.Context, uid string) (*task.Task, error) {
	if uid == "" {
		return nil, store.ErrMissingUID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[uid]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t.Completed = t.Completed.Clone()
	return &t, nil
}

func (s *Store) ListTasks(_ context.Context) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		t.Completed = t.Completed.Clone()
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) SaveTask(_ context.Context, t *task.Task) error {
	if t == nil {
		return store.ErrMissingUID
	}
	if t.UID == "" {
		t.UID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	stored.Completed = stored.Completed.Clone()
	s.tasks[t.UID] = stored
	return nil
}

func (s *Store) DeleteTask(_ context.Context, uid string) error {
	if uid == "" {
		return store.ErrMissingUID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[uid]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, uid)
	return nil
}
