package domain

import "errors"

// Таксономия доменных ошибок. Слои ниже оборачивают их через %w,
// граница (handler) сопоставляет каждую с HTTP-статусом через errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidMedia    = errors.New("invalid media")
	ErrStorage         = errors.New("file storage failure")
)
