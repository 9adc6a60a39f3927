package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/campusflow/internal/dbtest"
	"github.com/Skotchmaster/campusflow/internal/domain"
	"github.com/Skotchmaster/campusflow/internal/hash"
	"github.com/Skotchmaster/campusflow/internal/models"
	"github.com/Skotchmaster/campusflow/internal/repo"
	"github.com/Skotchmaster/campusflow/internal/tokens"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type spyStore struct {
	UserStore
	updateCalls int
	insertCalls int
}

func (s *spyStore) UpdateRole(ctx context.Context, username, role string) (int64, error) {
	s.updateCalls++
	return s.UserStore.UpdateRole(ctx, username, role)
}

func (s *spyStore) InsertUser(ctx context.Context, u *models.User) error {
	s.insertCalls++
	return s.UserStore.InsertUser(ctx, u)
}

type testEnv struct {
	svc      *AuthService
	store    *spyStore
	events   *fakePublisher
	verifier *tokens.Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	keys, err := tokens.NewKeys([]byte("test-jwt-secret"), "HS256")
	require.NoError(t, err)

	store := &spyStore{UserStore: repo.New(dbtest.Open(t))}
	events := &fakePublisher{}
	verifier := tokens.NewVerifier(keys)

	return &testEnv{
		svc: &AuthService{
			Repo:     store,
			Hasher:   hash.NewHasher(bcrypt.MinCost),
			Issuer:   tokens.NewIssuer(keys, 15*time.Minute),
			Verifier: verifier,
			Events:   events,
		},
		store:    store,
		events:   events,
		verifier: verifier,
	}
}

func (env *testEnv) register(t *testing.T, username, password string) *models.User {
	t.Helper()
	u, err := env.svc.Register(context.Background(), RegisterInput{Username: username, Password: password})
	require.NoError(t, err)
	return u
}

func (env *testEnv) setDisabled(t *testing.T, username string) {
	t.Helper()
	store := env.store.UserStore.(*repo.GormRepo)
	require.NoError(t, store.DB.Model(&models.User{}).Where("username = ?", username).Update("disabled", true).Error)
}

func TestAuthService_RegisterLoginResolve(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	u := env.register(t, "bob", "secret123")
	assert.Equal(t, "student", u.Role)
	assert.False(t, u.Disabled)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	res, err := env.svc.Login(ctx, "bob", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	id, err := env.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "bob", id.Username)
	assert.Equal(t, domain.RoleStudent, id.Role)
	assert.False(t, id.Disabled)

	assert.Equal(t, []string{"user_registered", "user_logged_in"}, env.events.types())
}

func TestAuthService_Register_OptionalFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	email, name := "bob@example.com", "Bob Smith"
	_, err := env.svc.Register(context.Background(), RegisterInput{
		Username: "bob", Password: "secret123", Email: &email, FullName: &name,
	})
	require.NoError(t, err)

	id, err := env.svc.Resolve(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, id.Email)
	require.NotNil(t, id.FullName)
	assert.Equal(t, email, *id.Email)
	assert.Equal(t, name, *id.FullName)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "bob", "secret123")

	_, err := env.svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAuthService_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "empty password", username: "user", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, RegisterInput{Username: tt.username, Password: tt.password})
			assert.ErrorIs(t, err, domain.ErrValidation)

			res, err := env.svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, env.store.insertCalls)
}

func TestAuthService_Login_NoEnumeration(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "rightpass")

	_, errWrongPass := env.svc.Login(ctx, "alice", "wrongpass")
	_, errNoUser := env.svc.Login(ctx, "nonexistent", "anything")

	require.Error(t, errWrongPass)
	require.Error(t, errNoUser)
	assert.ErrorIs(t, errWrongPass, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "carol", "secret123")
	env.setDisabled(t, "carol")

	_, err := env.svc.Login(context.Background(), "carol", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Resolve_DisabledThenActiveGate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "dave", "secret123")
	res, err := env.svc.Login(ctx, "dave", "secret123")
	require.NoError(t, err)

	env.setDisabled(t, "dave")

	id, err := env.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, id.Disabled)
	assert.ErrorIs(t, domain.RequireActive(id), domain.ErrInactiveAccount)
}

func TestAuthService_Resolve_VanishedUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthService_Authenticate_BadToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Authenticate(context.Background(), "not-a-valid-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthService_UpdateRole_PromotionVisibleOnNextLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob", "secret123")

	require.NoError(t, env.svc.UpdateRole(ctx, "bob", "professor"))

	res, err := env.svc.Login(ctx, "bob", "secret123")
	require.NoError(t, err)
	id, err := env.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessor, id.Role)
	assert.Contains(t, env.events.types(), "user_role_updated")
}

func TestAuthService_UpdateRole_InvalidRoleTouchesNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob", "secret123")

	err := env.svc.UpdateRole(ctx, "bob", "superuser")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	assert.Zero(t, env.store.updateCalls)

	id, err := env.svc.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, id.Role)
}

func TestAuthService_UpdateRole_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	err := env.svc.UpdateRole(context.Background(), "nobody", "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthService_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.events.err = errors.New("broker down")

	_, err := env.svc.Register(context.Background(), RegisterInput{Username: "erin", Password: "secret123"})
	require.NoError(t, err)
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.BootstrapAdmin(ctx, "root", "rootpass"))
	require.NoError(t, env.svc.BootstrapAdmin(ctx, "root", "rootpass"))

	id, err := env.svc.Resolve(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, id.Role)
	assert.Equal(t, 1, env.store.insertCalls)

	_, err = env.svc.Login(ctx, "root", "rootpass")
	require.NoError(t, err)

	env.register(t, "frank", "secret123")
	require.NoError(t, env.svc.BootstrapAdmin(ctx, "frank", "ignored"))
	id, err = env.svc.Resolve(ctx, "frank")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, id.Role)

	_, err = env.svc.Login(ctx, "frank", "secret123")
	require.NoError(t, err, "promotion keeps the existing password")

	require.NoError(t, env.svc.BootstrapAdmin(ctx, "", ""))
}
