package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/batches", h.listBatches)
	r.Post("/batches", h.createBatch)
	r.Get("/batches/{id}", h.getBatch)
	r.Put("/batches/{id}", h.updateBatch)
	r.Delete("/batches/{id}", h.removeBatch)
	r.Get("/expiring", h.listExpiring)
	r.Get("/summary", h.stockSummary)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	filter := BatchFilter{ProductID: httpx.QueryInt64(r, "product_id")}
	if all := httpx.QueryBool(r, "include_empty"); all != nil {
		filter.IncludeEmpty = *all
	}
	if limit := httpx.QueryInt64(r, "limit"); limit != nil {
		filter.Limit = int(*limit)
	}
	batches, err := h.service.ListBatches(r.Context(), filter)
	if err != nil {
		httpx.Fail(w, h.logger, "list batches failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var input CreateBatchInput
	if err := httpx.DecodeAndValidate(r, h.validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	batch, err := h.service.CreateBatch(r.Context(), input)
	if err != nil {
		httpx.Fail(w, h.logger, "create batch failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, batch)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get batch failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}

func (h *Handler) updateBatch(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input UpdateBatchInput
	if err := httpx.DecodeAndValidate(r, h.validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	batch, err := h.service.UpdateBatch(r.Context(), id, input)
	if err != nil {
		httpx.Fail(w, h.logger, "update batch failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}

func (h *Handler) removeBatch(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveBatch(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "remove batch failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	batches, err := h.service.ListExpiring(r.Context(), days)
	if err != nil {
		httpx.Fail(w, h.logger, "list expiring batches failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) stockSummary(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.StockSummary(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "stock summary failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}
