package service

import (
	"fmt"

	"github.com/Skotchmaster/campusflow/internal/domain"
)

var ErrValidation = fmt.Errorf("%w: empty username or password", domain.ErrValidation)
