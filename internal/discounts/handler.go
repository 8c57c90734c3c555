package discounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Handler exposes discount rules and the order discount preview.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the discounts handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes registers discount routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/applicable", h.applicable)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/active", h.setActive)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) applicable(w http.ResponseWriter, r *http.Request) {
	var req ApplicableRequest
	if err := httpx.DecodeAndValidate(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.GetApplicableForOrder(r.Context(), req.CustomerID, req.SalesmanID, req.ProductIDs)
	if err != nil {
		httpx.Fail(w, h.logger, "resolve discounts failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := RuleFilter{
		SalesmanID: httpx.QueryInt64(r, "salesman_id"),
		CustomerID: httpx.QueryInt64(r, "customer_id"),
		ProductID:  httpx.QueryInt64(r, "product_id"),
		IsActive:   httpx.QueryBool(r, "is_active"),
	}
	rules, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.Fail(w, h.logger, "list discount rules failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rules)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input RuleInput
	if err := httpx.DecodeAndValidate(r, h.validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rule, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create discount rule failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rule, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get discount rule failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input RuleInput
	if err := httpx.DecodeAndValidate(r, h.validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rule, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update discount rule failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var body struct {
		IsActive bool `json:"is_active"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rule, err := h.service.SetActive(r.Context(), id, body.IsActive)
	if err != nil {
		httpx.Fail(w, h.logger, "toggle discount rule failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete discount rule failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
