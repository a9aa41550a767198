package repository

import (
	"context"
	"sync"

	"task-manager/backend/internal/task/domain"
)

// MemoryRepository is an in-memory Repository that keeps insertion order. Used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Task
}

// NewMemoryRepository returns an empty in-memory task repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*domain.Task)}
}

func (r *MemoryRepository) Create(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byID[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Task, 0, limit)
	skipped := 0
	for _, id := range r.order {
		t := r.byID[id]
		if t.Owner != ownerID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.byID {
		if t.Owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[t.ID]
	if !ok || cur.Owner != t.Owner {
		return false, nil
	}
	cp := *t
	cp.CreatedAt = cur.CreatedAt
	r.byID[t.ID] = &cp
	return true, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok || cur.Owner != ownerID {
		return false, nil
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}
