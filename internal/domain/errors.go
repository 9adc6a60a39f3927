package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrForbidden          = errors.New("not enough permissions")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
)
