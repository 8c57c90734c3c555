package employees

import (
	"errors"
	"fmt"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

func (s *Service) validate(input Input) error {
	errs := []error{
		shared.Required("employee code", input.Code),
		shared.Required("employee name", input.Name),
	}
	if input.Password != "" && (len(input.Password) < 8 || len(input.Password) > maxPasswordBytes) {
		errs = append(errs, fmt.Errorf("%w: password must be 8 to %d bytes", internalShared.ErrValidation, maxPasswordBytes))
	}
	return errors.Join(errs...)
}
