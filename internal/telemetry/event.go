package telemetry

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the services.
const (
	EventUserRegistered  = "user.registered"
	EventUserLoggedIn    = "user.logged_in"
	EventUserLoginFailed = "user.login_failed"
	EventTaskCreated     = "task.created"
	EventTaskUpdated     = "task.updated"
	EventTaskDeleted     = "task.deleted"
)

// Event is a domain event. It is the JSON payload written to Kafka and the source of OTel log records.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"eventType"`
	UserID    string          `json:"userId,omitempty"`
	TaskID    string          `json:"taskId,omitempty"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent builds an event stamped with a fresh ID and the current time.
// metadata is encoded as JSON; encoding failures leave Metadata empty.
func NewEvent(eventType, source, userID, taskID string, metadata map[string]interface{}) *Event {
	ev := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		TaskID:    taskID,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			ev.Metadata = b
		}
	}
	return ev
}
