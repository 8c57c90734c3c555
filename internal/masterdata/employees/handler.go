package employees

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Handler serves /employees plus the password check.
type Handler struct {
	shared.CRUDHandler[Employee, Input]
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{
		CRUDHandler: shared.CRUDHandler[Employee, Input]{Logger: logger, Store: service, Validate: validate, Noun: "employee"},
		service:     service,
	}
}

// MountRoutes registers the CRUD routes and POST /verify.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/verify", h.verify)
	h.CRUDHandler.MountRoutes(r)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var input Credentials
	if err := httpx.DecodeAndValidate(r, h.Validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.service.VerifyPassword(r.Context(), input.Code, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}
		httpx.Fail(w, h.Logger, "verify employee password failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}
