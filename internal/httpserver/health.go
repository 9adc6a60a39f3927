package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/campusflow/internal/logging"
	"github.com/Skotchmaster/campusflow/internal/transport"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Welcome to the CampusFlow API!"})
}

func Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func Ready(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
