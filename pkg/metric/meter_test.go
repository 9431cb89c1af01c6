package metric_test

import (
	"testing"

	"github.com/absmach/coach/pkg/metric"
	"github.com/stretchr/testify/assert"
)

func TestMeterWeightedAverage(t *testing.T) {
	t.Parallel()
	m := metric.NewMeter("loss")

	m.Update(2.0, 128)
	m.Update(4.0, 64)

	assert.InDelta(t, (2.0*128+4.0*64)/192.0, m.Average(), 1e-12)
	assert.InDelta(t, 192.0, m.Count(), 1e-12)
}

func TestMeterEmpty(t *testing.T) {
	t.Parallel()
	m := metric.NewMeter("empty")

	assert.Zero(t, m.Average())
	assert.Zero(t, m.Count())
}

func TestMeterIgnoresNegativeWeight(t *testing.T) {
	t.Parallel()
	m := metric.NewMeter("loss")

	m.Update(1.0, 10)
	m.Update(100.0, -5)

	assert.InDelta(t, 1.0, m.Average(), 1e-12)
	assert.InDelta(t, 10.0, m.Count(), 1e-12)
}

func TestMeterZeroWeight(t *testing.T) {
	t.Parallel()
	m := metric.NewMeter("loss")

	m.Update(5.0, 0)

	assert.Zero(t, m.Average())
}

func TestMeterName(t *testing.T) {
	t.Parallel()
	m := metric.NewMeter("batch_time")

	assert.Equal(t, "batch_time", m.Name())
}
