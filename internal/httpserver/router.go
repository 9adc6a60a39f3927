package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/campusflow/internal/domain"
	authmw "github.com/Skotchmaster/campusflow/internal/middleware/auth"
	"github.com/Skotchmaster/campusflow/internal/models"
	"github.com/Skotchmaster/campusflow/internal/repo"
	"github.com/Skotchmaster/campusflow/internal/service"
)

type Deps struct {
	DB     *gorm.DB
	Pinger Pinger
	Auth   AuthService
	Events service.Publisher
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/", Root)
	e.GET("/health/live", Live)
	e.GET("/health/ready", Ready(d.Pinger))

	auth := &AuthHTTP{Svc: d.Auth}
	bearer := authmw.Bearer(d.Auth)

	active := authmw.Require(domain.RequireActive)
	admin := authmw.Require(domain.RequireAdmin)
	staff := authmw.Require(domain.RequireAdminOrProfessor)

	e.POST("/token", auth.Login)
	e.POST("/register", auth.Register)
	e.PUT("/users/:username/role", auth.UpdateRole, bearer, admin)
	e.GET("/users/me", auth.Me, bearer, active)

	students := &ResourceHTTP[models.Student, *models.Student]{
		Kind:   "student",
		Title:  "Student",
		Store:  repo.NewStore[models.Student](d.DB),
		Events: d.Events,
	}
	students.Mount(e.Group("/students", bearer), staff, admin)

	courses := &ResourceHTTP[models.Course, *models.Course]{
		Kind:       "course",
		Title:      "Course",
		MissingRef: "Department does not exist.",
		Store:      repo.NewStore[models.Course](d.DB),
		Events:     d.Events,
	}
	courses.Mount(e.Group("/courses", bearer), admin, admin)

	departments := &ResourceHTTP[models.Department, *models.Department]{
		Kind:       "department",
		Title:      "Department",
		MissingRef: "Department is still referenced.",
		Store:      repo.NewStore[models.Department](d.DB),
		Events:     d.Events,
	}
	departments.Mount(e.Group("/departments", bearer), admin, admin)

	professors := &ResourceHTTP[models.Professor, *models.Professor]{
		Kind:       "professor",
		Title:      "Professor",
		MissingRef: "Department does not exist.",
		Store:      repo.NewStore[models.Professor](d.DB),
		Events:     d.Events,
	}
	professors.Mount(e.Group("/professors", bearer), active, admin)

	enrollments := &ResourceHTTP[models.Enrollment, *models.Enrollment]{
		Kind:       "enrollment",
		Title:      "Enrollment",
		MissingRef: "Student or course does not exist.",
		Store:      repo.NewStore[models.Enrollment](d.DB),
		Events:     d.Events,
	}
	enrollments.Mount(e.Group("/enrollments", bearer), staff, staff)
}
