package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxNameLength = 100

// Status is the lifecycle state of a user.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusActive, StatusInactive}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", newValidationError(ErrInvalidStatus, "status", "must be one of: pending, active, inactive")
	}
	return s, nil
}

// User is the aggregate root for the user domain.
// It is immutable: every mutation returns a new *User and leaves the receiver untouched.
type User struct {
	id        string
	email     Email
	name      string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is the full field dump used for persistence and serialization.
type Snapshot struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateInput carries the optional fields of a profile update. Nil means unchanged.
type UpdateInput struct {
	Name  *string
	Email *string
}

// now is truncated to microseconds so timestamps survive a Postgres round trip unchanged.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// NewUser creates a pending user with a fresh id.
func NewUser(email, name string) (*User, error) {
	e, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	n, err := validateName(name)
	if err != nil {
		return nil, err
	}
	ts := now()
	return &User{
		id:        uuid.NewString(),
		email:     e,
		name:      n,
		status:    StatusPending,
		createdAt: ts,
		updatedAt: ts,
	}, nil
}

// Reconstitute rebuilds a user from stored fields. Stored values are trusted;
// only the email and status are re-parsed so the aggregate never holds an unknown state.
func Reconstitute(s Snapshot) (*User, error) {
	e, err := NewEmail(s.Email)
	if err != nil {
		return nil, err
	}
	if !s.Status.Valid() {
		return nil, newValidationError(ErrInvalidStatus, "status", "unknown status "+string(s.Status))
	}
	return &User{
		id:        s.ID,
		email:     e,
		name:      s.Name,
		status:    s.Status,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}, nil
}

func (u *User) ID() string           { return u.id }
func (u *User) Email() Email         { return u.email }
func (u *User) Name() string         { return u.name }
func (u *User) Status() Status       { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) IsActive() bool       { return u.status == StatusActive }

// Update returns a copy with the given fields changed. Status, id and createdAt are kept.
func (u *User) Update(in UpdateInput) (*User, error) {
	next := *u
	if in.Email != nil {
		e, err := NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		next.email = e
	}
	if in.Name != nil {
		n, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		next.name = n
	}
	next.updatedAt = u.nextUpdatedAt()
	return &next, nil
}

// Activate moves a pending user to active.
func (u *User) Activate() (*User, error) {
	return u.transition(StatusPending, StatusActive)
}

// Deactivate moves an active user to inactive.
func (u *User) Deactivate() (*User, error) {
	return u.transition(StatusActive, StatusInactive)
}

func (u *User) transition(from, to Status) (*User, error) {
	if u.status != from {
		return nil, &InvalidStateTransitionError{From: u.status, To: to}
	}
	next := *u
	next.status = to
	next.updatedAt = u.nextUpdatedAt()
	return &next, nil
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:        u.id,
		Email:     u.email.String(),
		Name:      u.name,
		Status:    u.status,
		CreatedAt: u.createdAt,
		UpdatedAt: u.updatedAt,
	}
}

// nextUpdatedAt never goes backwards, even if the wall clock does.
func (u *User) nextUpdatedAt() time.Time {
	ts := now()
	if ts.Before(u.updatedAt) {
		return u.updatedAt
	}
	return ts
}

func validateName(raw string) (string, error) {
	n := strings.TrimSpace(raw)
	if n == "" {
		return "", newValidationError(ErrInvalidName, "name", "Name is required")
	}
	if utf8.RuneCountInString(n) > MaxNameLength {
		return "", newValidationError(ErrInvalidName, "name", "Name is too long")
	}
	return n, nil
}
