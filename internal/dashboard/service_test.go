package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

type fakeRepo struct {
	calls atomic.Int32
	sales decimal.Decimal
}

func (f *fakeRepo) Counts(context.Context) (Counts, error) {
	f.calls.Add(1)
	return Counts{Products: 12, Customers: 4, Suppliers: 3, PendingPurchases: 2, PendingSales: 5}, nil
}

func (f *fakeRepo) SalesSince(_ context.Context, from time.Time) (decimal.Decimal, error) {
	if from.Day() != 1 {
		return decimal.Zero, nil
	}
	return f.sales, nil
}

type fakeInventory struct{}

func (fakeInventory) StockSummary(context.Context) ([]inventory.StockLevel, error) {
	return []inventory.StockLevel{
		{ProductID: 1, Quantity: 3, MinStock: 10, Low: true},
		{ProductID: 2, Quantity: 30, MinStock: 10},
	}, nil
}

func (fakeInventory) ListExpiring(_ context.Context, days int) ([]inventory.ExpiringBatch, error) {
	if days < 30 {
		return []inventory.ExpiringBatch{{DaysLeft: 5}}, nil
	}
	return []inventory.ExpiringBatch{{DaysLeft: 5}, {DaysLeft: 40}}, nil
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestService(t *testing.T, cache *Cache) (*Service, *fakeRepo) {
	repo := &fakeRepo{sales: decimal.RequireFromString("1250000.50")}
	svc := NewService(repo, fakeInventory{}, cache, 90)
	svc.now = func() time.Time { return time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestOverviewAggregates(t *testing.T) {
	svc, _ := newTestService(t, nil)
	out, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Products)
	assert.Equal(t, int64(5), out.PendingSales)
	assert.Equal(t, 1, out.LowStockProducts)
	assert.Equal(t, 2, out.ExpiringBatches)
	assert.Equal(t, 90, out.ExpiryWindowDays)
	assert.True(t, out.MonthToDateSales.Equal(decimal.RequireFromString("1250000.50")))
}

func TestOverviewCachedUntilLedgerChanges(t *testing.T) {
	cache := NewCache(newRedis(t), time.Minute)
	svc, repo := newTestService(t, cache)
	ctx := context.Background()

	_, err := svc.Overview(ctx)
	require.NoError(t, err)
	_, err = svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.calls.Load())

	cache.LedgerChanged(ctx, shared.LedgerChange{Flow: shared.FlowSalesFulfil, UnitsOut: 3})
	out, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.calls.Load())
	assert.True(t, out.MonthToDateSales.Equal(decimal.RequireFromString("1250000.5")))
}

func TestOverviewConcurrentCallers(t *testing.T) {
	cache := NewCache(newRedis(t), time.Minute)
	svc, repo := newTestService(t, cache)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Overview(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, repo.calls.Load(), int32(8))
	assert.GreaterOrEqual(t, repo.calls.Load(), int32(1))
}

func TestLowStockAndExpiring(t *testing.T) {
	svc, _ := newTestService(t, nil)
	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, int64(1), low[0].ProductID)

	soon, err := svc.ExpiringBatches(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, soon, 1)
	all, err := svc.ExpiringBatches(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCacheVersioning(t *testing.T) {
	client := newRedis(t)
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	key, err := cache.BuildKey(ctx, "dashboard", "overview")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:overview:1", key)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "dashboard", "overview")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:overview:2", key)

	require.NoError(t, cache.setAtLeast(ctx, 1))
	ver, err = cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver, "older versions never win")

	var nilCache *Cache
	key, err = nilCache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)
}
