package suppliers

import (
	"errors"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

func (s *Service) validate(input Input) error {
	return errors.Join(
		shared.Required("supplier code", input.Code),
		shared.Required("supplier name", input.Name),
	)
}
