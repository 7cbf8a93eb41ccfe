package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []UserEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]UserDocument
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]UserDocument{}} }

func (x *fakeIndex) Index(_ context.Context, doc UserDocument) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[doc.ID] = doc
	return nil
}

func (x *fakeIndex) Remove(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	return nil
}

func (x *fakeIndex) Search(_ context.Context, q string, size int) ([]UserDocument, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []UserDocument
	for _, d := range x.docs {
		if strings.Contains(strings.ToLower(d.Name+" "+d.Email), strings.ToLower(q)) && len(out) < size {
			out = append(out, d)
		}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*Service, *fakePublisher, *fakeIndex) {
	t.Helper()
	pub := &fakePublisher{}
	idx := newFakeIndex()
	return NewService(memory.NewUserRepository(), pub, idx, quietLogger()), pub, idx
}

func seedUsers(t *testing.T, svc *Service, n int) []UserResponse {
	t.Helper()
	out := make([]UserResponse, 0, n)
	for i := 0; i < n; i++ {
		u, err := svc.CreateUser(context.Background(), CreateUserInput{
			Email: fmt.Sprintf("user%d@example.com", i),
			Name:  fmt.Sprintf("User %d", i),
		})
		require.NoError(t, err)
		out = append(out, u)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	svc, pub, idx := newTestService(t)

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "Test@Example.com", Name: "Test User"})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", created.Email)
	assert.Equal(t, "Test User", created.Name)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, created.CreatedAt)

	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	assert.Equal(t, []EventType{EventUserCreated}, pub.types())
	assert.Contains(t, idx.docs, created.ID)
}

func TestService_CreateDuplicateEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "jane@example.com", Name: "Jane"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "JANE@Example.com", Name: "Jane Again"})
	var exists *UserAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "jane@example.com", exists.Email)
	assert.Equal(t, "User with email 'jane@example.com' already exists", err.Error())
}

func TestService_CreateInvalidInput(t *testing.T) {
	svc, pub, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "not-an-email", Name: "X"})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Violations[0].Field)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "x@example.com", Name: " "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Violations[0].Field)

	assert.Empty(t, pub.types())
}

func TestService_GetMissing(t *testing.T) {
	svc, _, _ := newTestService(t)
	id := uuid.NewString()

	_, err := svc.GetUser(context.Background(), id)
	var nf *UserNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, id, nf.ID)
	assert.Equal(t, "User not found: "+id, err.Error())
}

func TestService_ListPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedUsers(t, svc, 5)

	res, err := svc.ListUsers(context.Background(), ListUsersQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, PageMeta{Total: 5, Limit: 2, Offset: 0}, res.Meta)

	res, err = svc.ListUsers(context.Background(), ListUsersQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
}

func TestService_ListDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.ListUsers(context.Background(), ListUsersQuery{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, PageMeta{Total: 0, Limit: DefaultListLimit, Offset: 0}, res.Meta)

	res, err = svc.ListUsers(context.Background(), ListUsersQuery{Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, res.Meta.Limit)
	assert.Equal(t, 0, res.Meta.Offset)
}

func TestService_ListByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	users := seedUsers(t, svc, 3)
	_, err := svc.ActivateUser(ctx, users[1].ID)
	require.NoError(t, err)

	active := entity.StatusActive
	res, err := svc.ListUsers(ctx, ListUsersQuery{Status: &active})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, users[1].ID, res.Data[0].ID)
	assert.Equal(t, 1, res.Meta.Total)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)
	users := seedUsers(t, svc, 2)

	got, err := svc.UpdateUser(ctx, users[0].ID, UpdateUserInput{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, users[0].Email, got.Email)
	assert.Equal(t, users[0].CreatedAt, got.CreatedAt)
	assert.Equal(t, users[0].Status, got.Status)
	assert.GreaterOrEqual(t, got.UpdatedAt, users[0].UpdatedAt)

	// own email with different case is not a conflict
	got, err = svc.UpdateUser(ctx, users[0].ID, UpdateUserInput{Email: strPtr("USER0@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "user0@example.com", got.Email)

	_, err = svc.UpdateUser(ctx, users[0].ID, UpdateUserInput{Email: strPtr("User1@Example.com")})
	var exists *UserAlreadyExistsError
	assert.ErrorAs(t, err, &exists)

	got, err = svc.UpdateUser(ctx, users[0].ID, UpdateUserInput{Email: strPtr("fresh@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", got.Email)

	_, err = svc.UpdateUser(ctx, uuid.NewString(), UpdateUserInput{Name: strPtr("Ghost")})
	var nf *UserNotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.Contains(t, pub.types(), EventUserUpdated)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, pub, idx := newTestService(t)
	u := seedUsers(t, svc, 1)[0]

	require.NoError(t, svc.DeleteUser(ctx, u.ID))

	_, err := svc.GetUser(ctx, u.ID)
	var nf *UserNotFoundError
	assert.ErrorAs(t, err, &nf)

	err = svc.DeleteUser(ctx, u.ID)
	assert.ErrorAs(t, err, &nf)

	assert.Equal(t, []EventType{EventUserCreated, EventUserDeleted}, pub.types())
	assert.NotContains(t, idx.docs, u.ID)
}

func TestService_StatusChanges(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)
	u := seedUsers(t, svc, 1)[0]

	_, err := svc.DeactivateUser(ctx, u.ID)
	var terr *entity.InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)

	got, err := svc.ActivateUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)

	_, err = svc.ActivateUser(ctx, u.ID)
	require.ErrorAs(t, err, &terr)

	got, err = svc.DeactivateUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	_, err = svc.ActivateUser(ctx, uuid.NewString())
	var nf *UserNotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.Equal(t, []EventType{EventUserCreated, EventUserActivated, EventUserDeactivated}, pub.types())
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	seedUsers(t, svc, 3)

	res, err := svc.SearchUsers(ctx, "user 2", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "user2@example.com", res[0].Email)

	res, err = svc.SearchUsers(ctx, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, res)

	noIndex := NewService(memory.NewUserRepository(), nil, nil, quietLogger())
	res, err = noIndex.SearchUsers(ctx, "user", 5)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestService_PublisherFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(memory.NewUserRepository(), pub, nil, quietLogger())

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "jane@example.com", Name: "Jane"})
	require.NoError(t, err)

	_, err = svc.GetUser(ctx, created.ID)
	assert.NoError(t, err)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context, f repo.ListFilter) ([]*entity.User, error) {
	args := m.Called(ctx, f)
	us, _ := args.Get(0).([]*entity.User)
	return us, args.Error(1)
}

func (m *mockRepo) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, u)
	saved, _ := args.Get(0).(*entity.User)
	return saved, args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) Count(ctx context.Context, f repo.CountFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func TestService_ListPropagatesStoreErrors(t *testing.T) {
	r := new(mockRepo)
	boom := errors.New("connection refused")
	r.On("FindAll", mock.Anything, mock.Anything).Return([]*entity.User{}, nil)
	r.On("Count", mock.Anything, mock.Anything).Return(0, boom)

	svc := NewService(r, nil, nil, quietLogger())
	_, err := svc.ListUsers(context.Background(), ListUsersQuery{})
	assert.ErrorIs(t, err, boom)
	r.AssertExpectations(t)
}

func TestService_SaveRaceMapsToAlreadyExists(t *testing.T) {
	r := new(mockRepo)
	r.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, repo.ErrNotFound)
	r.On("Save", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil, repo.ErrDuplicateEmail)

	svc := NewService(r, nil, nil, quietLogger())
	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "jane@example.com", Name: "Jane"})
	var exists *UserAlreadyExistsError
	assert.ErrorAs(t, err, &exists)
	r.AssertExpectations(t)
}

// staleCacheRepo serves FindByID from a frozen copy, like a cache that
// missed an eviction, while FindByIDFromSource reads the real store.
type staleCacheRepo struct {
	*memory.UserRepository
	stale map[string]*entity.User
}

func (r *staleCacheRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := r.stale[id]; ok {
		return u, nil
	}
	return r.UserRepository.FindByID(ctx, id)
}

func (r *staleCacheRepo) FindByIDFromSource(ctx context.Context, id string) (*entity.User, error) {
	return r.UserRepository.FindByID(ctx, id)
}

func TestService_WritesReadFromSource(t *testing.T) {
	ctx := context.Background()
	store := &staleCacheRepo{UserRepository: memory.NewUserRepository(), stale: map[string]*entity.User{}}
	svc := NewService(store, nil, nil, quietLogger())

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	pending, err := store.UserRepository.FindByID(ctx, created.ID)
	require.NoError(t, err)
	store.stale[created.ID] = pending

	_, err = svc.ActivateUser(ctx, created.ID)
	require.NoError(t, err)

	// the stale copy is still pending; a cached read would reject this
	got, err := svc.DeactivateUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	got, err = svc.UpdateUser(ctx, created.ID, UpdateUserInput{Name: strPtr("Ada L.")})
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	// reads still go through the cache path
	cached, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", cached.Status)
}
