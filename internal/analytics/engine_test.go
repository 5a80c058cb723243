package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	ds    *Dataset
	err   error
	calls int
}

func (p *stubProvider) Dataset(_ context.Context, restaurantID uint, now time.Time) (*Dataset, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	ds := *p.ds
	ds.RestaurantID = restaurantID
	return &ds, nil
}

type countingRecorder struct {
	mu         sync.Mutex
	analyzers  map[Module]int
	dashboards []*Dashboard
}

func (r *countingRecorder) ObserveAnalyzer(m Module, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.analyzers == nil {
		r.analyzers = map[Module]int{}
	}
	r.analyzers[m]++
}

func (r *countingRecorder) RecordDashboard(d *Dashboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dashboards = append(r.dashboards, d)
}

func TestEngine_Dashboard(t *testing.T) {
	provider := &stubProvider{ds: reservationDataset()}
	rec := &countingRecorder{}
	engine := NewEngine(provider, DefaultPolicy(), WithClock(func() time.Time { return testNow }), WithRecorder(rec))

	d, err := engine.Dashboard(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), d.RestaurantID)
	assert.Equal(t, testNow, d.GeneratedAt)
	assert.Equal(t, 1, provider.calls, "one dataset load per dashboard")

	require.Len(t, rec.dashboards, 1)
	for _, m := range []Module{ModuleInventory, ModuleKitchen, ModuleMenu, ModuleReservations, ModuleRevenue} {
		assert.Equal(t, 1, rec.analyzers[m], m)
	}
}

func TestEngine_SingleAnalyzers(t *testing.T) {
	provider := &stubProvider{ds: reservationDataset()}
	engine := NewEngine(provider, DefaultPolicy(), WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	res, err := engine.Reservations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 14.0, res.Overbooking.RecommendedRate)

	rev, err := engine.Revenue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(16000), rev.Trends.TotalRevenue)

	inv, err := engine.Inventory(ctx, 1)
	require.NoError(t, err)
	assert.True(t, inv.Empty())

	_, err = engine.Kitchen(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Menu(ctx, 1)
	require.NoError(t, err)
}

func TestEngine_ProviderErrorIsSurfaced(t *testing.T) {
	boom := errors.New("connection refused")
	engine := NewEngine(&stubProvider{err: boom}, DefaultPolicy())

	_, err := engine.Dashboard(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "restaurant 3")

	_, err = engine.Menu(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}
