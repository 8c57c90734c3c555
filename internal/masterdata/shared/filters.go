// Package shared holds the list, query and error helpers common to the
// master data stores.
package shared

import (
	"net/http"
	"strconv"

	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 200

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list filters.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool

	// Entity specific filters
	CategoryID *int64
}

// Normalize fills defaults and bounds the page size.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
	return f
}

// Offset is the row offset of the requested page.
func (f ListFilters) Offset() int {
	f = f.Normalize()
	return (f.Page - 1) * f.Limit
}

// FiltersFromRequest reads page, limit, search, sort, dir, active and
// category_id from the query string.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return ListFilters{
		Page:       page,
		Limit:      limit,
		Search:     q.Get("search"),
		SortBy:     q.Get("sort"),
		SortDir:    q.Get("dir"),
		IsActive:   httpx.QueryBool(r, "active"),
		CategoryID: httpx.QueryInt64(r, "category_id"),
	}.Normalize()
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPage wraps items; nil slices encode as empty arrays.
func NewPage[T any](items []T, total int, f ListFilters) Page[T] {
	if items == nil {
		items = []T{}
	}
	f = f.Normalize()
	return Page[T]{Items: items, Total: total, Page: f.Page, Limit: f.Limit}
}
