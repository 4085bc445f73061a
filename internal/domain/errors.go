package domain

import (
	"fmt"

	"codeberg.org/mutker/producflow/internal/errors"
)

const (
	// Validation errors reuse the shared invalid-argument code so the
	// transport layer can map them uniformly.
	ErrInvalidField = errors.ErrInvalidArgument
	ErrNotFound     = errors.ErrResourceNotFound
)

func invalid(field, reason string) error {
	return errors.New().WithMessage(ErrInvalidField, fmt.Sprintf("invalid %s: %s", field, reason))
}

// NotFound builds the error returned when an entity lookup misses.
func NotFound(entity string, id int64) error {
	return errors.New().WithMessage(ErrNotFound, fmt.Sprintf("%s %d not found", entity, id))
}
