package shared

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pharmadist/pharmadist/internal/platform/db"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// NormalizeCode trims and upper-cases a business code or SKU.
func NormalizeCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

// NormalizeValue trims and lower-cases a lookup value such as a unit.
func NormalizeValue(value string) string {
	return lower.String(strings.TrimSpace(value))
}

// Required returns a validation error naming field when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", internalShared.ErrValidation, field)
	}
	return nil
}

// MapWriteError translates constraint violations raised by inserts and
// updates of noun.
func MapWriteError(err error, noun string) error {
	switch {
	case err == nil:
		return nil
	case db.IsNoRows(err):
		return fmt.Errorf("%s %w", noun, internalShared.ErrNotFound)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", internalShared.ErrDuplicate, noun)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s references an unknown record", internalShared.ErrValidation, noun)
	case db.IsCheckViolation(err):
		return fmt.Errorf("%w: %s has an invalid value", internalShared.ErrValidation, noun)
	}
	return err
}

// MapDeleteError translates the foreign key violation raised when a
// referenced noun is deleted.
func MapDeleteError(err error, noun string) error {
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s is still referenced", internalShared.ErrInUse, noun)
	}
	return err
}
