package application

import (
	"time"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// isoMillis matches the ISO-8601 form JavaScript clients expect (2006-01-02T15:04:05.000Z).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type CreateUserInput struct {
	Email string
	Name  string
}

// UpdateUserInput carries optional fields; nil leaves the field unchanged.
type UpdateUserInput struct {
	Email *string
	Name  *string
}

type ListUsersQuery struct {
	Limit  int
	Offset int
	Status *entity.Status
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type PageMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListUsersResponse struct {
	Data []UserResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

func toResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID(),
		Email:     u.Email().String(),
		Name:      u.Name(),
		Status:    u.Status().String(),
		CreatedAt: formatTime(u.CreatedAt()),
		UpdatedAt: formatTime(u.UpdatedAt()),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// normalize applies list defaults and clamps out-of-range values.
func (q ListUsersQuery) normalize() ListUsersQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
