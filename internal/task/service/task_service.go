package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"task-manager/backend/internal/apperror"
	policyengine "task-manager/backend/internal/policy/engine"
	"task-manager/backend/internal/task/domain"
	"task-manager/backend/internal/task/repository"
	"task-manager/backend/internal/telemetry"
)

const (
	instrumentationName = "task-manager/task"
	eventSource         = "task-service"
)

// Messages returned to callers.
const (
	MsgTaskNotFound   = "Task not found"
	MsgNoSession      = "No token, authorization denied"
	MsgOwnerImmutable = "owner cannot be changed"
)

// TaskService is the owner-scoped task store. Every operation runs on behalf of an authenticated owner.
type TaskService struct {
	repo      repository.Repository
	policy    policyengine.Evaluator
	events    telemetry.EventEmitter
	mutations metric.Int64Counter
	now       func() time.Time
}

// NewTaskService returns a TaskService. events may be nil to disable event emission.
func NewTaskService(repo repository.Repository, policy policyengine.Evaluator, events telemetry.EventEmitter) *TaskService {
	mutations, _ := otel.Meter(instrumentationName).Int64Counter("task.mutations",
		metric.WithDescription("Task create/update/delete operations by outcome"))
	return &TaskService{
		repo:      repo,
		policy:    policy,
		events:    events,
		mutations: mutations,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in, fills defaults and stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in domain.CreateInput) (task *domain.Task, err error) {
	ctx, span := s.start(ctx, "TaskService.Create", ownerID)
	defer func() { s.finish(ctx, span, "create", err) }()

	if ownerID == "" {
		return nil, apperror.Auth(MsgNoSession)
	}
	due, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	now := s.now()
	task = &domain.Task{
		ID:          uuid.New().String(),
		Owner:       ownerID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperror.Server("create task", err)
	}
	telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventTaskCreated, eventSource, ownerID, task.ID,
		map[string]interface{}{"priority": task.Priority, "status": task.Status}))
	return task, nil
}

// List returns one page of the owner's tasks in insertion order together with the owner's total count.
func (s *TaskService) List(ctx context.Context, ownerID string, p domain.Pagination) (page *domain.Page, err error) {
	ctx, span := s.start(ctx, "TaskService.List", ownerID)
	defer func() { s.end(span, err) }()

	if ownerID == "" {
		return nil, apperror.Auth(MsgNoSession)
	}
	p = domain.NewPagination(p.Page, p.Limit)
	span.SetAttributes(attribute.Int("page", p.Page), attribute.Int("limit", p.Limit))

	tasks, err := s.repo.ListByOwner(ctx, ownerID, p.Limit, p.Offset())
	if err != nil {
		return nil, apperror.Server("list tasks", err)
	}
	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Server("count tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &domain.Page{Tasks: tasks, Total: total}, nil
}

// Get returns the task with id if ownerID owns it. Tasks owned by someone else are reported as not found.
func (s *TaskService) Get(ctx context.Context, id, ownerID string) (task *domain.Task, err error) {
	ctx, span := s.start(ctx, "TaskService.Get", ownerID)
	defer func() { s.end(span, err) }()

	if ownerID == "" {
		return nil, apperror.Auth(MsgNoSession)
	}
	task, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperror.NotFound(MsgTaskNotFound)
	}
	if err := s.authorize(ctx, ownerID, policyengine.ActionRead, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update merges the fields present in in into the owner's task and returns the result.
// An update that tries to change the owner is rejected before the store is consulted.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, in domain.UpdateInput) (task *domain.Task, err error) {
	ctx, span := s.start(ctx, "TaskService.Update", ownerID)
	defer func() { s.finish(ctx, span, "update", err) }()

	if ownerID == "" {
		return nil, apperror.Auth(MsgNoSession)
	}
	if in.Owner != nil {
		return nil, apperror.Validation(MsgOwnerImmutable)
	}
	task, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperror.NotFound(MsgTaskNotFound)
	}
	if err := s.authorize(ctx, ownerID, policyengine.ActionUpdate, task); err != nil {
		return nil, err
	}
	if in.Empty() {
		return task, nil
	}
	if err := in.ApplyTo(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now()
	ok, err := s.repo.Update(ctx, task)
	if err != nil {
		return nil, apperror.Server("update task", err)
	}
	if !ok {
		return nil, apperror.NotFound(MsgTaskNotFound)
	}
	telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventTaskUpdated, eventSource, ownerID, task.ID,
		map[string]interface{}{"status": task.Status}))
	return task, nil
}

// ToggleStatus flips the task between pending and completed.
func (s *TaskService) ToggleStatus(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	current, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, ownerID, domain.StatusUpdate(current.Status.Toggled()))
}

// Delete removes the owner's task. Deleting an id that does not exist succeeds;
// deleting someone else's task reports not found.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) (err error) {
	ctx, span := s.start(ctx, "TaskService.Delete", ownerID)
	defer func() { s.finish(ctx, span, "delete", err) }()

	if ownerID == "" {
		return apperror.Auth(MsgNoSession)
	}
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	if err := s.authorize(ctx, ownerID, policyengine.ActionDelete, task); err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return apperror.Server("delete task", err)
	}
	telemetry.EmitAsync(s.events, ctx, telemetry.NewEvent(telemetry.EventTaskDeleted, eventSource, ownerID, id, nil))
	return nil
}

// load returns the task with id, or nil when there is none. Ids that are not UUIDs can never
// match a stored task and are not sent to the store.
func (s *TaskService) load(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Server("load task", err)
	}
	return task, nil
}

// authorize asks the policy engine whether subject may act on task. Denials and evaluation
// failures both hide the task.
func (s *TaskService) authorize(ctx context.Context, subject string, action policyengine.Action, task *domain.Task) error {
	allowed, err := s.policy.Allowed(ctx, subject, action, task)
	if err != nil {
		log.Printf("task: policy evaluation for %s on %s failed: %v", action, task.ID, err)
		return apperror.NotFound(MsgTaskNotFound)
	}
	if !allowed {
		return apperror.NotFound(MsgTaskNotFound)
	}
	return nil
}

func (s *TaskService) start(ctx context.Context, name, ownerID string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attribute.String("user.id", ownerID)))
}

func (s *TaskService) end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err, "error"))
	}
	span.End()
}

func (s *TaskService) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(apperror.KindOf(err))
	}
	if s.mutations != nil {
		s.mutations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
	s.end(span, err)
}
