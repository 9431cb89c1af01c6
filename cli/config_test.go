package cli

import (
	"testing"

	coach "github.com/absmach/coach"
	"github.com/absmach/coach/trainer"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func TestApplyExperimentOverridesNamedFields(t *testing.T) {
	t.Parallel()

	cfg := envConfig{
		Epochs:       300,
		LearningRate: 0.1,
		Momentum:     0.9,
		Architecture: "mlp",
		Hidden:       64,
		Classes:      10,
		TrainBatch:   128,
	}

	cfg.applyExperiment(&coach.Config{
		Optimization: coach.OptimizationConfig{
			Epochs:       intPtr(50),
			LearningRate: floatPtr(0.01),
			Schedule:     []int{10, 20},
		},
		Architecture: coach.ArchitectureConfig{
			Name: stringPtr("linear"),
		},
	})

	assert.Equal(t, 50, cfg.Epochs)
	assert.InDelta(t, 0.01, cfg.LearningRate, 1e-12)
	assert.Equal(t, []int{10, 20}, cfg.Schedule)
	assert.Equal(t, "linear", cfg.Architecture)

	// Fields the file does not name keep their environment values.
	assert.InDelta(t, 0.9, cfg.Momentum, 1e-12)
	assert.Equal(t, 64, cfg.Hidden)
	assert.Equal(t, 10, cfg.Classes)
	assert.Equal(t, 128, cfg.TrainBatch)
}

func TestApplyExperimentNil(t *testing.T) {
	t.Parallel()

	cfg := envConfig{Epochs: 300}
	cfg.applyExperiment(nil)
	assert.Equal(t, 300, cfg.Epochs)
}

func TestBestPolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, trainer.BestPreferLatest, bestPolicy("latest"))
	assert.Equal(t, trainer.BestStrict, bestPolicy("strict"))
	assert.Equal(t, trainer.BestStrict, bestPolicy(""))
}
