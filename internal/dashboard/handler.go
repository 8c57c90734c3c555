package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/low-stock", h.lowStock)
	r.Get("/expiring", h.expiring)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Overview(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "dashboard overview failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.LowStock(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "dashboard low stock failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	batches, err := h.service.ExpiringBatches(r.Context(), days)
	if err != nil {
		httpx.Fail(w, h.logger, "dashboard expiring batches failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}
