package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// translate maps storage errors onto service sentinels. what names the
// entity in the resulting message.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrStatusChanged):
		return fmt.Errorf("%w: %s was modified by another request", ErrConflict, what)
	case repository.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case repository.IsBadReference(err):
		return fmt.Errorf("%w: %s references missing or invalid data", ErrInvalidInput, what)
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidInput}, args...)...)
}
