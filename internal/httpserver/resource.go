package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/campusflow/internal/logging"
	"github.com/Skotchmaster/campusflow/internal/repo"
	"github.com/Skotchmaster/campusflow/internal/service"
)

const ResourceEventsTopic = "resource_events"

// ResourceHTTP serves CRUD for one resource table.
type ResourceHTTP[T any, P repo.Entity[T]] struct {
	// Kind is the singular lowercase name used in events and logs, e.g. "course".
	Kind string
	// Title prefixes "not found" messages, e.g. "Course".
	Title string
	// MissingRef is returned when a referenced row does not exist.
	MissingRef string

	Store  *repo.Store[T, P]
	Events service.Publisher
}

func (h *ResourceHTTP[T, P]) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Store.List(ctx)
	if err != nil {
		return h.storeError(ctx, "list", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ResourceHTTP[T, P]) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.Store.Get(ctx, id)
	if err != nil {
		return h.storeError(ctx, "get", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ResourceHTTP[T, P]) Create(c echo.Context) error {
	ctx := c.Request().Context()
	item, err := h.bind(c)
	if err != nil {
		return err
	}
	P(item).SetID(0)

	if err := h.Store.Create(ctx, item); err != nil {
		return h.storeError(ctx, "create", err)
	}
	h.publish(ctx, "created", P(item).GetID())
	return c.JSON(http.StatusCreated, item)
}

func (h *ResourceHTTP[T, P]) Update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.bind(c)
	if err != nil {
		return err
	}

	if err := h.Store.Update(ctx, id, item); err != nil {
		return h.storeError(ctx, "update", err)
	}
	h.publish(ctx, "updated", id)
	return c.JSON(http.StatusOK, item)
}

func (h *ResourceHTTP[T, P]) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		return h.storeError(ctx, "delete", err)
	}
	h.publish(ctx, "deleted", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ResourceHTTP[T, P]) bind(c echo.Context) (*T, error) {
	l := logging.FromContext(c.Request().Context()).With("handler", h.Kind)

	item := new(T)
	if err := (&echo.DefaultBinder{}).BindBody(c, item); err != nil {
		l.Warn(h.Kind+"_bind_error", "status", 400, "error", err)
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(item); err != nil {
		l.Warn(h.Kind+"_validate_error", "status", 400, "error", err)
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return item, nil
}

func (h *ResourceHTTP[T, P]) storeError(ctx context.Context, op string, err error) error {
	l := logging.FromContext(ctx).With("handler", h.Kind, "op", op)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, h.Title+" not found")
	case errors.Is(err, repo.ErrForeignKeyViolation):
		l.Warn(h.Kind+"_"+op+"_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, h.MissingRef)
	case errors.Is(err, repo.ErrDuplicateKey):
		l.Warn(h.Kind+"_"+op+"_error", "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, h.Title+" already exists.")
	}
	l.Error(h.Kind+"_"+op+"_error", "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

func (h *ResourceHTTP[T, P]) publish(ctx context.Context, action string, id uint) {
	if h.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := map[string]any{
		"type": h.Kind + "_" + action,
		"id":   id,
	}
	if err := h.Events.PublishEvent(pubCtx, ResourceEventsTopic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", ResourceEventsTopic, "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// Mount registers the five routes under g. read guards GET, write guards the rest.
func (h *ResourceHTTP[T, P]) Mount(g *echo.Group, read, write echo.MiddlewareFunc) {
	g.GET("", h.List, read)
	g.GET("/:id", h.Get, read)
	g.POST("", h.Create, write)
	g.PUT("/:id", h.Update, write)
	g.DELETE("/:id", h.Delete, write)
}
