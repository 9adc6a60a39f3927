package authmw

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/campusflow/internal/domain"
	"github.com/Skotchmaster/campusflow/internal/logging"
)

const (
	identityKey  = "identity"
	authErrorKey = "authenticate_error"
)

const (
	msgUnauthorized = "Could not validate credentials"
	msgForbidden    = "Not enough permissions"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Bearer reads "Authorization: Bearer <token>", verifies and resolves it and
// stores the identity on the echo context. Every token problem becomes 401.
func Bearer(a Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			id, err := a.Authenticate(c.Request().Context(), auth)
			if err != nil && !errors.Is(err, domain.ErrInvalidToken) {
				c.Set(authErrorKey, err)
			}
			return id, err
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "bearer")
			if internal, ok := c.Get(authErrorKey).(error); ok {
				l.Error("authenticate_error", "status", 500, "error", internal)
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(internal)
			}
			l.Warn("authenticate_failed", "status", 401, "error", err)
			return Reject(c, domain.ErrInvalidToken)
		},
	})
}

// Require lets the request through only if gate accepts the identity Bearer stored.
func Require(gate domain.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return Reject(c, domain.ErrInvalidToken)
			}
			if err := gate(id); err != nil {
				logging.FromContext(c.Request().Context()).Warn("gate_rejected",
					"username", id.Username, "role", string(id.Role), "reason", err.Error())
				return Reject(c, err)
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

func WithIdentity(c echo.Context, id *domain.Identity) {
	c.Set(identityKey, id)
}

// Reject turns an auth error kind into the HTTP error the client sees.
// Token, inactive account and unknown subject problems all look the same.
func Reject(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInactiveAccount):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}
