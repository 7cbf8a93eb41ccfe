package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
	sideEffectTimeout = 3 * time.Second
)

// Service implements the user use cases. Publisher and Index are optional.
type Service struct {
	Repo      repo.UserRepository
	Publisher EventPublisher
	Index     SearchIndex
	Logger    *logrus.Logger
}

func NewService(repo repo.UserRepository, publisher EventPublisher, index SearchIndex, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Repo:      repo,
		Publisher: publisher,
		Index:     index,
		Logger:    logger,
	}
}

// CreateUser registers a new pending user. The email must not be taken.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (UserResponse, error) {
	email, err := entity.NewEmail(in.Email)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return UserResponse{}, err
	}

	u, err := entity.NewUser(email.String(), in.Name)
	if err != nil {
		return UserResponse{}, err
	}
	saved, err := s.save(ctx, u)
	if err != nil {
		return UserResponse{}, err
	}

	s.Logger.WithField("user_id", saved.ID()).Info("user created")
	s.afterChange(ctx, EventUserCreated, saved)
	return toResponse(saved), nil
}

func (s *Service) GetUser(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return toResponse(u), nil
}

// ListUsers fetches one page and the matching total concurrently.
func (s *Service) ListUsers(ctx context.Context, q ListUsersQuery) (ListUsersResponse, error) {
	q = q.normalize()

	var (
		users []*entity.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.Repo.FindAll(gctx, repo.ListFilter{Limit: q.Limit, Offset: q.Offset, Status: q.Status})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Repo.Count(gctx, repo.CountFilter{Status: q.Status})
		return err
	})
	if err := g.Wait(); err != nil {
		return ListUsersResponse{}, err
	}

	data := make([]UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toResponse(u))
	}
	return ListUsersResponse{
		Data: data,
		Meta: PageMeta{Total: total, Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// UpdateUser changes name and/or email. A new email must not belong to another user.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (UserResponse, error) {
	u, err := s.findForWrite(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}

	if in.Email != nil {
		email, err := entity.NewEmail(*in.Email)
		if err != nil {
			return UserResponse{}, err
		}
		if !email.Equals(u.Email()) {
			if err := s.ensureEmailFree(ctx, email, u.ID()); err != nil {
				return UserResponse{}, err
			}
		}
	}

	updated, err := u.Update(entity.UpdateInput{Name: in.Name, Email: in.Email})
	if err != nil {
		return UserResponse{}, err
	}
	saved, err := s.save(ctx, updated)
	if err != nil {
		return UserResponse{}, err
	}

	s.afterChange(ctx, EventUserUpdated, saved)
	return toResponse(saved), nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.findForWrite(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &UserNotFoundError{ID: id}
		}
		return err
	}

	s.Logger.WithField("user_id", id).Info("user deleted")
	s.publish(ctx, newUserEvent(EventUserDeleted, u))
	if s.Index != nil {
		c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		if err := s.Index.Remove(c, id); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("search index remove failed")
		}
	}
	return nil
}

func (s *Service) ActivateUser(ctx context.Context, id string) (UserResponse, error) {
	return s.changeStatus(ctx, id, EventUserActivated, (*entity.User).Activate)
}

func (s *Service) DeactivateUser(ctx context.Context, id string) (UserResponse, error) {
	return s.changeStatus(ctx, id, EventUserDeactivated, (*entity.User).Deactivate)
}

// SearchUsers runs a full-text query against the search index.
// It returns an empty result when no index is configured.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]UserResponse, error) {
	out := []UserResponse{}
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return out, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	docs, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out = append(out, UserResponse(d))
	}
	return out, nil
}

func (s *Service) changeStatus(ctx context.Context, id string, ev EventType, fn func(*entity.User) (*entity.User, error)) (UserResponse, error) {
	u, err := s.findForWrite(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	next, err := fn(u)
	if err != nil {
		return UserResponse{}, err
	}
	saved, err := s.save(ctx, next)
	if err != nil {
		return UserResponse{}, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": id, "status": saved.Status()}).Info("user status changed")
	s.afterChange(ctx, ev, saved)
	return toResponse(saved), nil
}

func (s *Service) find(ctx context.Context, id string) (*entity.User, error) {
	return s.lookup(ctx, id, s.Repo.FindByID)
}

// findForWrite bypasses any cache in front of the store.
func (s *Service) findForWrite(ctx context.Context, id string) (*entity.User, error) {
	if src, ok := s.Repo.(repo.SourceReader); ok {
		return s.lookup(ctx, id, src.FindByIDFromSource)
	}
	return s.find(ctx, id)
}

func (s *Service) lookup(ctx context.Context, id string, fetch func(context.Context, string) (*entity.User, error)) (*entity.User, error) {
	u, err := fetch(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, &UserNotFoundError{ID: id}
		}
		return nil, err
	}
	return u, nil
}

// ensureEmailFree fails when email belongs to a user other than selfID.
func (s *Service) ensureEmailFree(ctx context.Context, email entity.Email, selfID string) error {
	existing, err := s.Repo.FindByEmail(ctx, email.String())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID() != selfID:
		return &UserAlreadyExistsError{Email: email.String()}
	}
	return nil
}

func (s *Service) save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, &UserAlreadyExistsError{Email: u.Email().String()}
		}
		return nil, err
	}
	return saved, nil
}

// afterChange publishes the event and refreshes the search projection.
// Both are best effort; failures are logged and do not fail the request.
func (s *Service) afterChange(ctx context.Context, t EventType, u *entity.User) {
	s.publish(ctx, newUserEvent(t, u))
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Index.Index(c, UserDocument(toResponse(u))); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID()).Warn("search index update failed")
	}
}

func (s *Service) publish(ctx context.Context, ev UserEvent) {
	if s.Publisher == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Publisher.Publish(c, ev); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": ev.UserID, "event": ev.Type}).Error("publish user event failed")
	}
}
