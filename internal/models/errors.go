package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is an ErrUnauthorized raised for an identified actor that
	// lacks ownership or capability.
	ErrForbidden = fmt.Errorf("%w: not permitted", ErrUnauthorized)
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	// ErrTransient marks failures the caller may retry with backoff.
	ErrTransient = errors.New("temporarily unavailable")
)
