package request

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the lifecycle
// and synchronizer tests and mirrors the Postgres guard semantics exactly:
// the check-and-set of a status happens under one lock acquisition.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*ServiceRequest
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]*ServiceRequest{}}
}

func (s *MemoryStore) Insert(_ context.Context, r *ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New().String()
	r.Status = StatusSent
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	stored := *r
	s.items[r.ID] = &stored
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	out := *r
	return &out, nil
}

func (s *MemoryStore) ListByProvider(_ context.Context, providerID int64) ([]ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []ServiceRequest
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.items[s.order[i]]
		if r.ProviderID == providerID {
			items = append(items, *r)
		}
	}
	return items, nil
}

func (s *MemoryStore) ListAll(context.Context) ([]ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []ServiceRequest
	for i := len(s.order) - 1; i >= 0; i-- {
		items = append(items, *s.items[s.order[i]])
	}
	return items, nil
}

func (s *MemoryStore) UpdateStatusIfBelow(_ context.Context, id string, target Status) (bool, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return false, "", &NotFoundError{ID: id}
	}
	if r.Status.Terminal() {
		return false, r.Status, nil
	}
	if target != StatusCancelled && r.Status.Rank() >= target.Rank() {
		return false, r.Status, nil
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return true, target, nil
}
