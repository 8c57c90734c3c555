package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pharmadist/pharmadist/internal/dashboard"
	jobmetrics "github.com/pharmadist/pharmadist/internal/jobs"
)

// Warmer is satisfied by *dashboard.Service.
type Warmer interface {
	Warm(ctx context.Context) (dashboard.Overview, error)
}

// Invalidator is satisfied by *dashboard.Cache.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// DashboardWarmupJob repopulates the cached dashboard overview.
type DashboardWarmupJob struct {
	Dashboard Warmer
	Cache     Invalidator
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dash Warmer, cache Invalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: dash, Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard:warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	if payload.Invalidate && j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			logger.Error("bump dashboard cache", slog.Any("error", err))
			return err
		}
	}
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	overview, err := j.Dashboard.Warm(warmCtx)
	if err != nil {
		logger.Error("warm dashboard", slog.Any("error", err))
		return err
	}
	logger.Info("completed dashboard warmup",
		slog.Int("low_stock", overview.LowStockProducts),
		slog.Int("expiring", overview.ExpiringBatches),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
