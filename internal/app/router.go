package app

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/pharmadist/pharmadist/internal/observability"
	"github.com/pharmadist/pharmadist/internal/platform/httpx"
)

// Mounter is implemented by every module HTTP handler.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Discounts      Mounter
	PurchaseOrders Mounter
	SalesOrders    Mounter
	StockTransfers Mounter
	Inventory      Mounter
	Dashboard      Mounter
	Jobs           Mounter

	// MasterData maps a resource name such as "products" to its handler.
	MasterData map[string]Mounter

	HealthChecks map[string]HealthCheck
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.HealthChecks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		mount(api, "/discounts", params.Discounts)
		mount(api, "/purchase-orders", params.PurchaseOrders)
		mount(api, "/sales-orders", params.SalesOrders)
		mount(api, "/stock-transfers", params.StockTransfers)
		mount(api, "/inventory", params.Inventory)
		mount(api, "/dashboard", params.Dashboard)
		mount(api, "/jobs", params.Jobs)

		names := make([]string, 0, len(params.MasterData))
		for name := range params.MasterData {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mount(api, "/"+name, params.MasterData[name])
		}
	})

	return r
}

func mount(r chi.Router, pattern string, h Mounter) {
	if h == nil {
		return
	}
	r.Route(pattern, h.MountRoutes)
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			report.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(r.Context()); err != nil {
					report.Checks[name] = err.Error()
					report.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				report.Checks[name] = "ok"
			}
		}
		httpx.JSON(w, status, report)
	}
}
