package checkpoint_test

import (
	"context"
	"testing"

	"github.com/absmach/coach/pkg/checkpoint"
	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) checkpoint.Store {
	t.Helper()
	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func newBadgerStore(t *testing.T) checkpoint.Store {
	t.Helper()
	store, err := checkpoint.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func stores(t *testing.T) map[string]checkpoint.Store {
	t.Helper()

	return map[string]checkpoint.Store{
		"file":   newFileStore(t),
		"badger": newBadgerStore(t),
	}
}

func TestStoreSlotIndependence(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Metrics 10, 20, 15 in sequence: best keeps 20, latest keeps 15.
			saves := []checkpoint.Checkpoint{
				{Epoch: 1, ModelState: []byte("a"), Metric: 10, BestMetric: 10, IsBest: true},
				{Epoch: 2, ModelState: []byte("b"), Metric: 20, BestMetric: 20, IsBest: true},
				{Epoch: 3, ModelState: []byte("c"), Metric: 15, BestMetric: 20, IsBest: false},
			}
			for _, cp := range saves {
				require.NoError(t, store.Save(ctx, cp))
			}

			latest, err := store.Load(ctx, checkpoint.SlotLatest)
			require.NoError(t, err)
			assert.Equal(t, 3, latest.Epoch)
			assert.InDelta(t, 15.0, latest.Metric, 1e-12)
			assert.Equal(t, []byte("c"), latest.ModelState)

			best, err := store.Load(ctx, checkpoint.SlotBest)
			require.NoError(t, err)
			assert.Equal(t, 2, best.Epoch)
			assert.InDelta(t, 20.0, best.Metric, 1e-12)
			assert.Equal(t, []byte("b"), best.ModelState)
		})
	}
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), checkpoint.SlotLatest)
			assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

			_, err = store.Load(context.Background(), checkpoint.SlotBest)
			assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cp := checkpoint.Checkpoint{
				Epoch:          42,
				ModelState:     []byte{0x01, 0x02, 0x03},
				OptimizerState: []byte{0x04},
				Metric:         91.5,
				BestMetric:     93.25,
			}
			require.NoError(t, store.Save(ctx, cp))

			got, err := store.Load(ctx, checkpoint.SlotLatest)
			require.NoError(t, err)
			assert.Equal(t, cp.Epoch, got.Epoch)
			assert.Equal(t, cp.ModelState, got.ModelState)
			assert.Equal(t, cp.OptimizerState, got.OptimizerState)
			assert.InDelta(t, cp.Metric, got.Metric, 1e-12)
			assert.InDelta(t, cp.BestMetric, got.BestMetric, 1e-12)

			// IsBest is a save directive, never persisted.
			assert.False(t, got.IsBest)
		})
	}
}

func TestStoreInvalidSlot(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), checkpoint.Slot("oldest"))
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := checkpoint.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), checkpoint.Checkpoint{Epoch: 7, Metric: 50, BestMetric: 50, IsBest: true}))
	require.NoError(t, store.Close())

	reopened, err := checkpoint.NewFileStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), checkpoint.SlotBest)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Epoch)
}

func TestNewStoreFactory(t *testing.T) {
	t.Parallel()

	store, err := checkpoint.NewStore(checkpoint.Config{Type: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	store.Close()

	_, err = checkpoint.NewStore(checkpoint.Config{Type: "redis"})
	assert.Error(t, err)
}
