package progress

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
)

func TestMemoryStoreUnknownSessionIsIdle(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	run, err := store.Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, run.Status)
	assert.Equal(t, "Waiting...", run.Message)
	assert.Equal(t, 0, run.Progress)
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	want := Run{Status: StatusRunning, Message: "Searching...", Progress: 40, CurrentDay: 2, TotalDays: 7}
	require.NoError(t, store.Set(ctx, "s1", want))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryStoreWholeEntryReplace(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", Run{Status: StatusRunning, Message: "day 3", CurrentDay: 3, TotalDays: 5}))
	require.NoError(t, store.Set(ctx, "s1", Run{Status: StatusCompleted, Message: "done", Progress: 100}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Zero(t, got.CurrentDay)
	assert.Zero(t, got.TotalDays)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", Run{Status: StatusCompleted, Progress: 100}))

	current = current.Add(2 * time.Minute)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, got.Status)

	// A write sweeps the expired entry out entirely.
	require.NoError(t, store.Set(ctx, "s2", Run{Status: StatusStarting}))
	store.mu.RLock()
	_, exists := store.entries["s1"]
	store.mu.RUnlock()
	assert.False(t, exists)
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisStoreSetGet(t *testing.T) {
	store := NewRedisStore(setupRedis(t), time.Hour)
	ctx := context.Background()

	brand := "Toyota"
	want := Run{
		Status:   StatusCompleted,
		Message:  "Success! Found 1 car rental offers",
		Progress: 100,
		Result: &Result{
			Offers:      []offers.Offer{{Brand: &brand, Currency: "USD"}},
			Total:       1,
			CSVFilename: "enjoytravel-offers-2026-01-03T09-30-15.csv",
		},
	}
	require.NoError(t, store.Set(ctx, "s1", want))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want.Status, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 1, got.Result.Total)
	require.Len(t, got.Result.Offers, 1)
	assert.Equal(t, "Toyota", *got.Result.Offers[0].Brand)
}

func TestRedisStoreUnknownSessionIsIdle(t *testing.T) {
	store := NewRedisStore(setupRedis(t), time.Hour)

	run, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, Idle(), run)
}
