package trainer_test

import (
	"testing"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/absmach/coach/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	s, err := trainer.NewSession("run-1", 0, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, trainer.Initializing, s.State())

	require.NoError(t, s.Begin(0))
	assert.Equal(t, trainer.Running, s.State())
	assert.Equal(t, 0, s.Epoch())

	assert.True(t, s.Advance())
	assert.Equal(t, 1, s.Epoch())
	assert.True(t, s.Advance())
	assert.Equal(t, 2, s.Epoch())

	// Third advance exhausts the range.
	assert.False(t, s.Advance())
	assert.Equal(t, trainer.Completed, s.State())
	assert.True(t, s.Terminal())
}

func TestSessionBeginTwice(t *testing.T) {
	t.Parallel()

	s, err := trainer.NewSession("run-1", 0, 2, 0)
	require.NoError(t, err)
	require.NoError(t, s.Begin(0))
	assert.Error(t, s.Begin(0))
}

func TestSessionStartEpoch(t *testing.T) {
	t.Parallel()

	s, err := trainer.NewSession("run-1", 5, 10, 80)
	require.NoError(t, err)
	require.NoError(t, s.Begin(80))

	assert.Equal(t, 5, s.Epoch())
	assert.InDelta(t, 80.0, s.Best(), 1e-12)
}

func TestSessionInvalidRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		startEpoch  int
		totalEpochs int
	}{
		{name: "zero epochs", startEpoch: 0, totalEpochs: 0},
		{name: "negative start", startEpoch: -1, totalEpochs: 5},
		{name: "start beyond end", startEpoch: 5, totalEpochs: 5},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := trainer.NewSession("run-1", tc.startEpoch, tc.totalEpochs, 0)
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)
		})
	}
}

func TestSessionInterruptIsTerminal(t *testing.T) {
	t.Parallel()

	s, err := trainer.NewSession("run-1", 0, 10, 0)
	require.NoError(t, err)
	require.NoError(t, s.Begin(0))
	require.True(t, s.Advance())

	s.Interrupt()
	assert.Equal(t, trainer.Interrupted, s.State())
	assert.True(t, s.Terminal())

	// Nothing moves a terminal session.
	assert.False(t, s.Advance())
	assert.Equal(t, 1, s.Epoch())
	assert.False(t, s.Observe(99, trainer.BestStrict))
}

func TestSessionObserveBestPolicy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		policy trainer.BestPolicy
		metric float64
		best   float64
		want   bool
	}{
		{name: "strict improvement", policy: trainer.BestStrict, metric: 20, best: 10, want: true},
		{name: "strict tie keeps earlier", policy: trainer.BestStrict, metric: 10, best: 10, want: false},
		{name: "strict regression", policy: trainer.BestStrict, metric: 5, best: 10, want: false},
		{name: "latest tie replaces", policy: trainer.BestPreferLatest, metric: 10, best: 10, want: true},
		{name: "latest regression", policy: trainer.BestPreferLatest, metric: 5, best: 10, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := trainer.NewSession("run-1", 0, 2, tc.best)
			require.NoError(t, err)
			require.NoError(t, s.Begin(tc.best))

			assert.Equal(t, tc.want, s.Observe(tc.metric, tc.policy))
			if tc.want {
				assert.InDelta(t, tc.metric, s.Best(), 1e-12)
			} else {
				assert.InDelta(t, tc.best, s.Best(), 1e-12)
			}
		})
	}
}

func TestSessionBestSequence(t *testing.T) {
	t.Parallel()

	s, err := trainer.NewSession("run-1", 0, 5, 0)
	require.NoError(t, err)
	require.NoError(t, s.Begin(0))

	// Metric sequence 10, 20, 15: best sticks at 20.
	assert.True(t, s.Observe(10, trainer.BestStrict))
	s.Advance()
	assert.True(t, s.Observe(20, trainer.BestStrict))
	s.Advance()
	assert.False(t, s.Observe(15, trainer.BestStrict))
	assert.InDelta(t, 20.0, s.Best(), 1e-12)
}
