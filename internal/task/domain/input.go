package domain

import (
	"strings"

	"task-manager/backend/internal/apperror"
)

// CreateInput is the request schema for creating a task. Title, Description and DueDate are required;
// Priority defaults to medium and Status to pending.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    Priority `json:"priority,omitempty"`
	Status      Status   `json:"status,omitempty"`
}

// Normalize trims text fields and fills defaults, then validates. It returns the parsed due date.
func (in *CreateInput) Normalize() (Date, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Title == "" {
		return Date{}, apperror.Validation("title is required")
	}
	if in.Description == "" {
		return Date{}, apperror.Validation("description is required")
	}
	if in.DueDate == "" {
		return Date{}, apperror.Validation("dueDate is required")
	}
	due, err := ParseDate(in.DueDate)
	if err != nil {
		return Date{}, apperror.Validation("dueDate must be a date in YYYY-MM-DD format")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Date{}, apperror.Validation("priority must be one of high, medium, low")
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.Valid() {
		return Date{}, apperror.Validation("status must be one of pending, completed")
	}
	return due, nil
}

// UpdateInput is the request schema for a partial update. Nil fields are left untouched.
// Owner is present only so a request that tries to change it can be rejected.
type UpdateInput struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Owner       *string   `json:"owner,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (in *UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.DueDate == nil &&
		in.Priority == nil && in.Status == nil && in.Owner == nil
}

// ApplyTo validates the update and merges the provided fields into t.
// t is left unchanged when validation fails.
func (in *UpdateInput) ApplyTo(t *Task) error {
	if in.Owner != nil {
		return apperror.Validation("owner cannot be changed")
	}
	next := *t
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperror.Validation("title cannot be empty")
		}
		next.Title = title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return apperror.Validation("description cannot be empty")
		}
		next.Description = desc
	}
	if in.DueDate != nil {
		due, err := ParseDate(*in.DueDate)
		if err != nil {
			return apperror.Validation("dueDate must be a date in YYYY-MM-DD format")
		}
		next.DueDate = due
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return apperror.Validation("priority must be one of high, medium, low")
		}
		next.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return apperror.Validation("status must be one of pending, completed")
		}
		next.Status = *in.Status
	}
	*t = next
	return nil
}

// StatusUpdate returns an update that only sets the status.
func StatusUpdate(s Status) UpdateInput {
	return UpdateInput{Status: &s}
}
