package repository

import (
	"context"
	"database/sql"
	"errors"

	"task-manager/backend/internal/task/domain"
)

const taskColumns = `id, owner_id, title, description, due_date, priority, status, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the task. The task must have ID and Owner set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Owner, t.Title, t.Description, t.DueDate, string(t.Priority), string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

// GetByID returns the task for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByOwner returns a window of the owner's tasks ordered by insertion sequence.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY seq ASC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByOwner returns how many tasks the owner has.
func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

// Update overwrites title, description, due date, priority, status and updated_at. Owner is part of the
// match condition and never written.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $3, description = $4, due_date = $5, priority = $6, status = $7, updated_at = $8
		 WHERE id = $1 AND owner_id = $2`,
		t.ID, t.Owner, t.Title, t.Description, t.DueDate, string(t.Priority), string(t.Status), t.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the task owned by ownerID.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t        domain.Task
		priority string
		status   string
	)
	if err := row.Scan(&t.ID, &t.Owner, &t.Title, &t.Description, &t.DueDate, &priority, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	return &t, nil
}
