package units

import (
	"errors"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

func (s *Service) validate(input Input) error {
	return errors.Join(
		shared.Required("unit value", input.Value),
		shared.Required("unit label", input.Label),
	)
}
