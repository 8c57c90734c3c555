package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/pharmadist/pharmadist/internal/app"
	"github.com/pharmadist/pharmadist/internal/dashboard"
	"github.com/pharmadist/pharmadist/internal/discounts"
	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/masterdata/categories"
	"github.com/pharmadist/pharmadist/internal/masterdata/customers"
	"github.com/pharmadist/pharmadist/internal/masterdata/employees"
	"github.com/pharmadist/pharmadist/internal/masterdata/products"
	"github.com/pharmadist/pharmadist/internal/masterdata/salesmen"
	"github.com/pharmadist/pharmadist/internal/masterdata/suppliers"
	"github.com/pharmadist/pharmadist/internal/masterdata/units"
	"github.com/pharmadist/pharmadist/internal/observability"
	"github.com/pharmadist/pharmadist/internal/platform/cache"
	"github.com/pharmadist/pharmadist/internal/platform/db"
	"github.com/pharmadist/pharmadist/internal/procurement"
	"github.com/pharmadist/pharmadist/internal/sales"
	"github.com/pharmadist/pharmadist/internal/shared"
	"github.com/pharmadist/pharmadist/internal/transfers"
	"github.com/pharmadist/pharmadist/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		// The dashboard falls back to uncached reads without Redis.
		logger.Warn("redis unavailable", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	validate := validator.New()
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	if err := dashboardCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("dashboard invalidation listener", slog.Any("error", err))
	}
	ledgerObservers := shared.LedgerObservers{metrics, dashboardCache}

	inventoryService := inventory.NewService(inventory.NewRepository(dbpool), auditLogger, ledgerObservers, inventory.ServiceConfig{
		ExpiryWarningDays: cfg.ExpiryWarningDays,
	})
	discountService := discounts.NewService(discounts.NewRepository(dbpool), auditLogger)
	procurementService := procurement.NewService(procurement.NewRepository(dbpool), auditLogger, idempotencyStore, ledgerObservers)
	salesService := sales.NewService(sales.NewRepository(dbpool), discountService, auditLogger, idempotencyStore, ledgerObservers)
	transferService := transfers.NewService(transfers.NewRepository(dbpool), auditLogger, ledgerObservers)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), inventoryService, dashboardCache, cfg.ExpiryWarningDays)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		Discounts:      discounts.NewHandler(logger, discountService, validate),
		PurchaseOrders: procurement.NewHandler(logger, procurementService, validate),
		SalesOrders:    sales.NewHandler(logger, salesService, validate),
		StockTransfers: transfers.NewHandler(logger, transferService, validate),
		Inventory:      inventory.NewHandler(logger, inventoryService, validate),
		Dashboard:      dashboard.NewHandler(logger, dashboardService),
		Jobs:           jobs.NewHandler(inspector, jobClient, logger),
		MasterData: map[string]app.Mounter{
			"categories": categories.NewHandler(logger, categories.NewService(categories.NewRepository(dbpool)), validate),
			"units":      units.NewHandler(logger, units.NewService(units.NewRepository(dbpool)), validate),
			"products":   products.NewHandler(logger, products.NewService(products.NewRepository(dbpool)), validate),
			"suppliers":  suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(dbpool)), validate),
			"customers":  customers.NewHandler(logger, customers.NewService(customers.NewRepository(dbpool)), validate),
			"salesmen":   salesmen.NewHandler(logger, salesmen.NewService(salesmen.NewRepository(dbpool)), validate),
			"employees":  employees.NewHandler(logger, employees.NewService(employees.NewRepository(dbpool)), validate),
		},
		HealthChecks: map[string]app.HealthCheck{
			"postgres": dbpool.Ping,
			"redis": func(ctx context.Context) error {
				if redisClient == nil {
					return cache.ErrUnavailable
				}
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
