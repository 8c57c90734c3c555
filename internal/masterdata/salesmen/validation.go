package salesmen

import (
	"errors"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

func (s *Service) validate(input Input) error {
	return errors.Join(
		shared.Required("salesman code", input.Code),
		shared.Required("salesman name", input.Name),
	)
}
