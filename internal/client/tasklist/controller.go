// Package tasklist drives the paginated task list on the client. Every mutation is followed by a
// refetch of the current page; the local list is never patched.
package tasklist

import (
	"context"
	"sync"

	"task-manager/backend/internal/task/domain"
)

// TaskAPI is the part of the API client the controller needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, page, limit int) (*domain.Page, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, in domain.CreateInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, in domain.UpdateInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// State is a snapshot of the controller.
type State struct {
	Page       int
	Limit      int
	TotalPages int
	Total      int
	Tasks      []*domain.Task
	Loading    bool
	Err        error
}

// Controller holds the current page of tasks.
type Controller struct {
	api TaskAPI

	mu      sync.Mutex
	page    int
	limit   int
	tasks   []*domain.Task
	total   int
	loading bool
	err     error
}

// New returns a Controller on page 1. A non-positive limit uses domain.DefaultLimit.
func New(api TaskAPI, limit int) *Controller {
	p := domain.NewPagination(1, limit)
	return &Controller{api: api, page: p.Page, limit: p.Limit, tasks: []*domain.Task{}}
}

// State returns a snapshot. The task slice is shared; callers must not modify it.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Page:       c.page,
		Limit:      c.limit,
		TotalPages: domain.TotalPages(c.total, c.limit),
		Total:      c.total,
		Tasks:      c.tasks,
		Loading:    c.loading,
		Err:        c.err,
	}
}

// Load fetches the current page. If the page is past the last one (for example after deleting the
// only task on the last page) it steps back until it lands on a page that exists.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	for {
		c.mu.Lock()
		page, limit := c.page, c.limit
		c.mu.Unlock()

		res, err := c.api.ListTasks(ctx, page, limit)
		c.mu.Lock()
		if err != nil {
			c.err = err
			c.mu.Unlock()
			return err
		}
		c.err = nil
		c.tasks = res.Tasks
		if c.tasks == nil {
			c.tasks = []*domain.Task{}
		}
		c.total = res.Total
		clamp := c.page > domain.TotalPages(c.total, c.limit) && c.page > 1
		if clamp {
			c.page--
		}
		c.mu.Unlock()
		if !clamp {
			return nil
		}
	}
}

// Refresh refetches the current page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// SetPage moves to page (at least 1) and fetches it.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return c.Load(ctx)
}

// Next moves one page forward unless already on the last page.
func (c *Controller) Next(ctx context.Context) error {
	s := c.State()
	if s.Page >= s.TotalPages {
		return nil
	}
	return c.SetPage(ctx, s.Page+1)
}

// Prev moves one page back unless already on the first page.
func (c *Controller) Prev(ctx context.Context) error {
	s := c.State()
	if s.Page <= 1 {
		return nil
	}
	return c.SetPage(ctx, s.Page-1)
}

// Get fetches one task from the server. The current page is left as it is.
func (c *Controller) Get(ctx context.Context, id string) (*domain.Task, error) {
	return c.api.GetTask(ctx, id)
}

// Create validates in locally, sends it and refetches the current page.
// A validation failure sends nothing.
func (c *Controller) Create(ctx context.Context, in domain.CreateInput) (*domain.Task, error) {
	check := in
	if _, err := check.Normalize(); err != nil {
		return nil, err
	}
	task, err := c.api.CreateTask(ctx, check)
	if err != nil {
		return nil, err
	}
	return task, c.Refresh(ctx)
}

// Update sends a partial update and refetches the current page.
func (c *Controller) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Task, error) {
	task, err := c.api.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return task, c.Refresh(ctx)
}

// ToggleStatus flips task between pending and completed.
func (c *Controller) ToggleStatus(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return c.Update(ctx, task.ID, domain.StatusUpdate(task.Status.Toggled()))
}

// Delete deletes a task and refetches, stepping back a page if the current one emptied.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
