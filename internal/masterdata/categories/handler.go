package categories

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

// Handler serves /categories.
type Handler = shared.CRUDHandler[Category, Input]

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{Logger: logger, Store: service, Validate: validate, Noun: "category"}
}
