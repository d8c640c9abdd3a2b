package services

import (
	"errors"

	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/store"
)

var (
	ErrNotFound           = store.ErrNotFound
	ErrAlreadyExists      = store.ErrAlreadyExists
	ErrPersistence        = store.ErrPersistence
	ErrExternalService    = recipe.ErrExternalService
	ErrRateLimited        = recipe.ErrRateLimited
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = recipe.ErrInvalidRequest
)
