package customers

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

// Handler serves /customers.
type Handler = shared.CRUDHandler[Customer, Input]

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{Logger: logger, Store: service, Validate: validate, Noun: "customer"}
}
