package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/campusflow/internal/domain"
	"github.com/Skotchmaster/campusflow/internal/logging"
	"github.com/Skotchmaster/campusflow/internal/models"
	"github.com/Skotchmaster/campusflow/internal/repo"
)

const UserEventsTopic = "user_events"

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, username, role string) (int64, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type AuthService struct {
	Repo     UserStore
	Hasher   PasswordHasher
	Issuer   TokenIssuer
	Verifier TokenVerifier
	Events   Publisher

	dummyOnce sync.Once
	dummy     string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type RegisterInput struct {
	Username string
	Password string
	Email    *string
	FullName *string
}

// Login never tells an unknown username apart from a wrong password, and a
// disabled account fails the same way once its password checks out.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		l.Warn("login_failed", "status", 400, "reason", "empty username or password")
		return nil, ErrValidation
	}

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.CheckPassword(s.dummyHash(), password)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, domain.ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, domain.ErrInvalidCredentials
	}
	if user.Disabled {
		l.Warn("login_failed", "status", 401, "reason", "account disabled")
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.Issuer.Issue(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publish(ctx, UserEventsTopic, user.Username, map[string]any{
		"type":     "user_logged_in",
		"username": user.Username,
	})
	l.Info("login_successful")

	return &LoginResult{AccessToken: token, TokenType: "bearer", ExpiresAt: exp}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", in.Username)

	if in.Username == "" || in.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "empty username or password")
		return nil, ErrValidation
	}

	pwHash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: pwHash,
		Email:        in.Email,
		FullName:     in.FullName,
		Disabled:     false,
		Role:         string(domain.RoleStudent),
	}
	if err := s.Repo.InsertUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			l.Warn("register_error", "status", 400, "reason", "user already exist")
			return nil, domain.ErrUsernameTaken
		}
		l.Error("register_error", "status", 500, "reason", "cannot insert user", "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.publish(ctx, UserEventsTopic, user.Username, map[string]any{
		"type":     "user_registered",
		"username": user.Username,
		"role":     user.Role,
	})
	l.Info("register_successful")
	return user, nil
}

// UpdateRole expects the caller to have passed the admin gate already.
func (s *AuthService) UpdateRole(ctx context.Context, username, role string) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_role", "username", username)

	r, err := domain.ParseRole(role)
	if err != nil {
		l.Warn("update_role_error", "status", 400, "reason", "invalid role", "role", role)
		return err
	}

	n, err := s.Repo.UpdateRole(ctx, username, string(r))
	if err != nil {
		l.Error("update_role_error", "status", 500, "error", err)
		return fmt.Errorf("update role: %w", err)
	}
	if n == 0 {
		l.Warn("update_role_error", "status", 404, "reason", "user not found")
		return domain.ErrNotFound
	}

	s.publish(ctx, UserEventsTopic, username, map[string]any{
		"type":     "user_role_updated",
		"username": username,
		"role":     string(r),
	})
	l.Info("update_role_successful", "role", string(r))
	return nil
}

// Resolve loads the identity behind a verified subject. It does not look at
// the disabled flag; that is the Active gate's job.
func (s *AuthService) Resolve(ctx context.Context, subject string) (*domain.Identity, error) {
	user, err := s.Repo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user.Identity(), nil
}

// Authenticate verifies a bearer token and resolves its subject.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	subject, err := s.Verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, subject)
}

// BootstrapAdmin makes sure username exists with the admin role. An existing
// account keeps its password and is only promoted.
func (s *AuthService) BootstrapAdmin(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.bootstrap_admin", "username", username)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	existing, err := s.Repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role == string(domain.RoleAdmin) {
			return nil
		}
		if _, err := s.Repo.UpdateRole(ctx, username, string(domain.RoleAdmin)); err != nil {
			return fmt.Errorf("promote bootstrap admin: %w", err)
		}
		l.Info("bootstrap_admin_promoted")
		return nil
	case !errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("find bootstrap admin: %w", err)
	}

	pwHash, err := s.Hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}
	err = s.Repo.InsertUser(ctx, &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         string(domain.RoleAdmin),
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	l.Info("bootstrap_admin_created")
	return nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.Hasher.HashPassword("campusflow-dummy-password")
	})
	return s.dummy
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "error", err)
	}
}
