package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

var Roles = []Role{RoleAdmin, RoleStudent, RoleProfessor}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}

// ParseRole accepts only the exact lowercase role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		names := make([]string, len(Roles))
		for i, v := range Roles {
			names[i] = string(v)
		}
		return "", fmt.Errorf("%w: must be one of: %s", ErrInvalidRole, strings.Join(names, ", "))
	}
	return r, nil
}

// Identity is the caller resolved from a verified token for the lifetime of one request.
type Identity struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Disabled bool    `json:"disabled"`
	Role     Role    `json:"role"`
}
