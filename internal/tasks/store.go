package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store persists tasks
type Store interface {
	// List returns every task, newest first
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, in NewTask) (Task, error)
	Update(ctx context.Context, id int64, patch Patch) (Task, error)
	Delete(ctx context.Context, id int64) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// MemoryStore keeps tasks in process. It backs tests and `serve` without a
// database URL.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]Task
	now    func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		tasks:  make(map[int64]Task),
		now:    time.Now,
	}
}

// List implements Store
func (s *MemoryStore) List(ctx context.Context) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id int64) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// Create implements Store
func (s *MemoryStore) Create(ctx context.Context, in NewTask) (Task, error) {
	content, err := ValidateContent(in.Content)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        s.nextID,
		Content:   content,
		Notes:     in.Notes,
		DueDate:   in.DueDate,
		CreatedAt: s.now().UTC(),
	}
	s.tasks[t.ID] = t
	s.nextID++
	return t, nil
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, id int64, patch Patch) (Task, error) {
	var content string
	if patch.Content != nil {
		var err error
		if content, err = ValidateContent(*patch.Content); err != nil {
			return Task{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	if patch.Content != nil {
		t.Content = content
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.NotesSet {
		t.Notes = patch.Notes
	}
	s.tasks[id] = t
	return t, nil
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
