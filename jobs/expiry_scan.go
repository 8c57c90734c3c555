package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pharmadist/pharmadist/internal/inventory"
	jobmetrics "github.com/pharmadist/pharmadist/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ExpiryLister is satisfied by *inventory.Service.
type ExpiryLister interface {
	ListExpiring(ctx context.Context, days int) ([]inventory.ExpiringBatch, error)
}

// ExpiryScanJob logs stocked batches that expire inside the warning window.
type ExpiryScanJob struct {
	Inventory   ExpiryLister
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	DefaultDays int
}

// NewExpiryScanJob wires dependencies for the scan handler.
func NewExpiryScanJob(inv ExpiryLister, logger *slog.Logger, metrics *jobmetrics.Metrics, defaultDays int) *ExpiryScanJob {
	return &ExpiryScanJob{Inventory: inv, Logger: logger, Metrics: metrics, DefaultDays: defaultDays}
}

// Handle processes inventory:expiry_scan tasks.
func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Inventory == nil {
		return errors.New("expiry scan: handler not configured")
	}
	var payload ExpiryScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	days := payload.Days
	if days <= 0 {
		days = j.DefaultDays
	}

	tracker := j.metrics().Track(TaskInventoryExpiryScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger().With(slog.Int("days", days))
	batches, err := j.Inventory.ListExpiring(ctx, days)
	if err != nil {
		logger.Error("list expiring batches", slog.Any("error", err))
		return err
	}
	for _, b := range batches {
		logger.Warn("batch close to expiry",
			slog.Int64("batch_id", b.ID),
			slog.String("batch_number", b.BatchNumber),
			slog.String("product", b.ProductName),
			slog.Int64("quantity", b.Quantity),
			slog.Int("days_left", b.DaysLeft))
	}
	j.metrics().AddExpiring(jobmetrics.WindowLabel(days), len(batches))
	logger.Info("completed expiry scan", slog.Int("batches", len(batches)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ExpiryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInventoryExpiryScan))
	}
	return slog.Default().With(slog.String("job", TaskInventoryExpiryScan))
}

func (j *ExpiryScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
