package repository

import (
	"context"

	"task-manager/backend/internal/task/domain"
)

// Repository defines persistence for tasks. Lookups by id return (nil, nil) when the row is absent;
// errors are reserved for storage failures.
type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByOwner returns the owner's tasks in insertion order, skipping offset and returning at most limit.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Task, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// Update overwrites the mutable fields of the task matching both t.ID and t.Owner.
	// Returns false if no such task exists.
	Update(ctx context.Context, t *domain.Task) (bool, error)
	// Delete removes the task matching id and ownerID. Returns false if no such task exists.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
