package categories

import "github.com/pharmadist/pharmadist/internal/masterdata/shared"

func (s *Service) validate(input Input) error {
	return shared.Required("category name", input.Name)
}
