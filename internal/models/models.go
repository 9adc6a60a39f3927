package models

import (
	"github.com/Skotchmaster/campusflow/internal/domain"
)

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string  `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash string  `gorm:"not null"                  json:"-"`
	Email        *string `json:"email"`
	FullName     *string `json:"full_name"`
	Disabled     bool    `gorm:"not null;default:false"    json:"disabled"`
	Role         string  `gorm:"not null;default:student"  json:"role"`
}

func (u *User) Identity() *domain.Identity {
	return &domain.Identity{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
		Role:     domain.Role(u.Role),
	}
}

type Department struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name" validate:"required"`
	Code string `gorm:"uniqueIndex;not null"     json:"code" validate:"required"`
}

type Student struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"not null"                 json:"name"  validate:"required"`
	Age   int    `json:"age"                      validate:"gte=0,lte=150"`
	Email string `gorm:"uniqueIndex;not null"     json:"email" validate:"required,email"`
}

type Course struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string      `gorm:"not null"                 json:"title"         validate:"required"`
	Code         string      `gorm:"uniqueIndex;not null"     json:"code"          validate:"required"`
	Description  string      `json:"description"`
	Credits      int         `json:"credits"                  validate:"gte=0"`
	DepartmentID uint        `gorm:"index;not null"           json:"department_id" validate:"required"`
	Department   *Department `json:"-"`
}

type Professor struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"not null"                 json:"name"          validate:"required"`
	Email        string      `gorm:"uniqueIndex;not null"     json:"email"         validate:"required,email"`
	DepartmentID uint        `gorm:"index;not null"           json:"department_id" validate:"required"`
	Title        string      `json:"title"`
	Department   *Department `json:"-"`
}

type Enrollment struct {
	ID             uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID      uint     `gorm:"index;not null"           json:"student_id"      validate:"required"`
	CourseID       uint     `gorm:"index;not null"           json:"course_id"       validate:"required"`
	EnrollmentDate Date     `json:"enrollment_date"       validate:"required"`
	Grade          *string  `json:"grade"`
	Student        *Student `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Course         *Course  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func All() []any {
	return []any{&User{}, &Department{}, &Student{}, &Course{}, &Professor{}, &Enrollment{}}
}

func (d *Department) SetID(id uint) { d.ID = id }
func (s *Student) SetID(id uint)    { s.ID = id }
func (c *Course) SetID(id uint)     { c.ID = id }
func (p *Professor) SetID(id uint)  { p.ID = id }
func (e *Enrollment) SetID(id uint) { e.ID = id }

func (d *Department) GetID() uint { return d.ID }
func (s *Student) GetID() uint    { return s.ID }
func (c *Course) GetID() uint     { return c.ID }
func (p *Professor) GetID() uint  { return p.ID }
func (e *Enrollment) GetID() uint { return e.ID }
