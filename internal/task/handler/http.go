// Package handler exposes the task service over REST. Every route expects middleware.RequireAuth
// to have run first.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/apperror"
	"task-manager/backend/internal/server/middleware"
	"task-manager/backend/internal/task/domain"
)

// MsgTaskDeleted is the body message of a successful delete.
const MsgTaskDeleted = "Task deleted"

// TaskAPI is the part of the task service the handler needs.
type TaskAPI interface {
	Create(ctx context.Context, ownerID string, in domain.CreateInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string, p domain.Pagination) (*domain.Page, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Update(ctx context.Context, id, ownerID string, in domain.UpdateInput) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// TaskHandler serves the task routes.
type TaskHandler struct {
	tasks TaskAPI
}

// NewTaskHandler returns a TaskHandler backed by tasks.
func NewTaskHandler(tasks TaskAPI) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Mount registers the task routes on r behind auth.
func (h *TaskHandler) Mount(r fiber.Router, auth fiber.Handler) {
	g := r.Group("/tasks", auth)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in domain.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return apperror.Validation("invalid request body")
	}
	task, err := h.tasks.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// List handles GET /tasks?page=&limit=.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	p := domain.ParsePagination(c.Query("page"), c.Query("limit"))
	page, err := h.tasks.List(c.UserContext(), middleware.UserID(c), p)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// Update handles PUT /tasks/:id with a partial task body.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var in domain.UpdateInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return apperror.Validation("invalid request body")
		}
	}
	task, err := h.tasks.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: MsgTaskDeleted})
}
