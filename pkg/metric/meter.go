package metric

// Meter accumulates a weighted running average of a scalar, typically
// weighted by batch size. A fresh meter is required per epoch pass.
type Meter struct {
	name  string
	sum   float64
	count float64
}

func NewMeter(name string) *Meter {
	return &Meter{name: name}
}

func (m *Meter) Name() string {
	return m.name
}

// Update adds value*weight to the running sum. Weight must be non-negative;
// negative weights are ignored.
func (m *Meter) Update(value, weight float64) {
	if weight < 0 {
		return
	}
	m.sum += value * weight
	m.count += weight
}

// Average returns sum/count, or 0 before any update.
func (m *Meter) Average() float64 {
	if m.count == 0 {
		return 0
	}

	return m.sum / m.count
}

func (m *Meter) Count() float64 {
	return m.count
}
