package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
)

type EventType string

const (
	EventUserCreated     EventType = "user.created"
	EventUserUpdated     EventType = "user.updated"
	EventUserActivated   EventType = "user.activated"
	EventUserDeactivated EventType = "user.deactivated"
	EventUserDeleted     EventType = "user.deleted"
)

// UserEvent is published after a user change has been persisted.
type UserEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newUserEvent(t EventType, u *entity.User) UserEvent {
	return UserEvent{
		Type:       t,
		UserID:     u.ID(),
		Email:      u.Email().String(),
		Name:       u.Name(),
		Status:     u.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher delivers user events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, ev UserEvent) error
}

// UserDocument is the searchable projection of a user.
type UserDocument struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SearchIndex keeps a full-text projection of users.
type SearchIndex interface {
	Index(ctx context.Context, doc UserDocument) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]UserDocument, error)
}
