package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pharmadist/pharmadist/internal/inventory"
)

// RepositoryPort exposes the aggregate queries.
type RepositoryPort interface {
	Counts(ctx context.Context) (Counts, error)
	SalesSince(ctx context.Context, from time.Time) (decimal.Decimal, error)
}

// InventoryReader is the slice of the inventory service the dashboard shows.
type InventoryReader interface {
	StockSummary(ctx context.Context) ([]inventory.StockLevel, error)
	ListExpiring(ctx context.Context, days int) ([]inventory.ExpiringBatch, error)
}

// Service assembles dashboard data behind the versioned cache.
type Service struct {
	repo       RepositoryPort
	inventory  InventoryReader
	cache      *Cache
	group      singleflight.Group
	expiryDays int
	now        func() time.Time
}

// NewService wires the dashboard. expiryDays bounds the expiring batch count.
func NewService(repo RepositoryPort, inv InventoryReader, cache *Cache, expiryDays int) *Service {
	if expiryDays <= 0 {
		expiryDays = 90
	}
	return &Service{repo: repo, inventory: inv, cache: cache, expiryDays: expiryDays, now: time.Now}
}

// Overview returns the summary, computing it at most once per cache version
// even under concurrent requests.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview")
	if err != nil {
		return Overview{}, err
	}
	res := s.group.DoChan(key, func() (any, error) {
		var out Overview
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.loadOverview(ctx)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Overview{}, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			return Overview{}, r.Err
		}
		return r.Val.(Overview), nil
	}
}

// LowStock lists products whose stock is below their minimum.
func (s *Service) LowStock(ctx context.Context) ([]inventory.StockLevel, error) {
	levels, err := s.inventory.StockSummary(ctx)
	if err != nil {
		return nil, err
	}
	low := []inventory.StockLevel{}
	for _, l := range levels {
		if l.Low {
			low = append(low, l)
		}
	}
	return low, nil
}

// ExpiringBatches lists batches expiring within days, or the configured
// window when days is not positive.
func (s *Service) ExpiringBatches(ctx context.Context, days int) ([]inventory.ExpiringBatch, error) {
	if days <= 0 {
		days = s.expiryDays
	}
	return s.inventory.ListExpiring(ctx, days)
}

// Warm drops the cached overview and computes a fresh one.
func (s *Service) Warm(ctx context.Context) (Overview, error) {
	if err := s.cache.Bump(ctx); err != nil {
		return Overview{}, err
	}
	return s.Overview(ctx)
}

func (s *Service) loadOverview(ctx context.Context) (Overview, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := Overview{ExpiryWindowDays: s.expiryDays, GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.repo.Counts(ctx)
		if err != nil {
			return err
		}
		out.Products, out.Customers, out.Suppliers = c.Products, c.Customers, c.Suppliers
		out.PendingPurchases, out.PendingSales = c.PendingPurchases, c.PendingSales
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.SalesSince(ctx, monthStart)
		out.MonthToDateSales = total
		return err
	})
	g.Go(func() error {
		low, err := s.LowStock(ctx)
		out.LowStockProducts = len(low)
		return err
	})
	g.Go(func() error {
		expiring, err := s.inventory.ListExpiring(ctx, s.expiryDays)
		out.ExpiringBatches = len(expiring)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}
