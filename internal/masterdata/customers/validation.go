package customers

import (
	"errors"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

func (s *Service) validate(input Input) error {
	return errors.Join(
		shared.Required("customer code", input.Code),
		shared.Required("customer name", input.Name),
	)
}
