package shared

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Store is the service surface every master data resource exposes.
type Store[T, In any] interface {
	List(ctx context.Context, filters ListFilters) ([]T, int, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, input In) (T, error)
	Update(ctx context.Context, id int64, input In) (T, error)
	Delete(ctx context.Context, id int64) error
}

// CRUDHandler serves list/get/create/update/delete for one resource.
type CRUDHandler[T, In any] struct {
	Logger   *slog.Logger
	Store    Store[T, In]
	Validate *validator.Validate
	Noun     string
}

// MountRoutes registers the CRUD routes.
func (h *CRUDHandler[T, In]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *CRUDHandler[T, In]) list(w http.ResponseWriter, r *http.Request) {
	filters := FiltersFromRequest(r)
	items, total, err := h.Store.List(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.Logger, "list "+h.Noun+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewPage(items, total, filters))
}

func (h *CRUDHandler[T, In]) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.Store.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.Logger, "get "+h.Noun+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *CRUDHandler[T, In]) create(w http.ResponseWriter, r *http.Request) {
	var input In
	if err := httpx.DecodeAndValidate(r, h.Validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.Store.Create(r.Context(), input)
	if err != nil {
		httpx.Fail(w, h.Logger, "create "+h.Noun+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *CRUDHandler[T, In]) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input In
	if err := httpx.DecodeAndValidate(r, h.Validate, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.Store.Update(r.Context(), id, input)
	if err != nil {
		httpx.Fail(w, h.Logger, "update "+h.Noun+" failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *CRUDHandler[T, In]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.Logger, "delete "+h.Noun+" failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
