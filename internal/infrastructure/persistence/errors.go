package persistence

import (
	"errors"
	"strings"

	"github.com/utilitrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err comes from a unique constraint.
// The driver message is kept (no TranslateError) so callers can tell constraints apart.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// violates reports whether a unique violation names the given column or index
func violates(err error, column string) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), column)
}

// isExclusionViolation reports whether err comes from a PostgreSQL exclusion constraint
func isExclusionViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23P01") ||
		strings.Contains(msg, "violates exclusion constraint")
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
