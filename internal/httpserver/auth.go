package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/campusflow/internal/domain"
	"github.com/Skotchmaster/campusflow/internal/logging"
	authmw "github.com/Skotchmaster/campusflow/internal/middleware/auth"
	"github.com/Skotchmaster/campusflow/internal/models"
	"github.com/Skotchmaster/campusflow/internal/service"
	"github.com/Skotchmaster/campusflow/internal/transport"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	UpdateRole(ctx context.Context, username, role string) error
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

type AuthHTTP struct {
	Svc AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			return authmw.Reject(c, err)
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			return echo.NewHTTPError(http.StatusBadRequest, "Username already exists.")
		case errors.Is(err, domain.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusCreated, transport.MessageResponse{
		Message: fmt.Sprintf("User '%s' registered successfully with role '%s'.", user.Username, user.Role),
	})
}

func (h *AuthHTTP) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_role")
	username := c.Param("username")

	var req transport.RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_role_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateRole(ctx, username, req.Role); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid role. Must be one of: admin, student, professor")
		case errors.Is(err, domain.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{
		Message: fmt.Sprintf("User '%s' role updated to '%s'.", username, req.Role),
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id := authmw.IdentityFrom(c)
	if id == nil {
		return authmw.Reject(c, domain.ErrInvalidToken)
	}
	return c.JSON(http.StatusOK, id)
}
