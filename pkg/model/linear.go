package model

import (
	"fmt"
	"math"
	"math/rand"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/fxamacker/cbor/v2"
)

// Linear is a single fully connected layer producing one logit per class.
type Linear struct {
	classes  int
	features int
	weights  []float64 // classes x features, row major
	bias     []float64
	wGrad    []float64
	bGrad    []float64
	inputs   [][]float64 // cached by Forward for Backward
	training bool
}

type linearState struct {
	Classes  int       `cbor:"classes"`
	Features int       `cbor:"features"`
	Weights  []float64 `cbor:"weights"`
	Bias     []float64 `cbor:"bias"`
}

func NewLinear(classes, features int) (*Linear, error) {
	if classes < 2 || features < 1 {
		return nil, fmt.Errorf("%w: %d classes, %d features", pkgerrors.ErrInvalidData, classes, features)
	}

	m := &Linear{
		classes:  classes,
		features: features,
		weights:  make([]float64, classes*features),
		bias:     make([]float64, classes),
		wGrad:    make([]float64, classes*features),
		bGrad:    make([]float64, classes),
	}
	scale := 1 / math.Sqrt(float64(features))
	rng := rand.New(rand.NewSource(int64(classes)*31 + int64(features)))
	for i := range m.weights {
		m.weights[i] = rng.NormFloat64() * scale
	}

	return m, nil
}

func (m *Linear) Forward(inputs [][]float64) ([][]float64, error) {
	outputs := make([][]float64, len(inputs))
	for i, row := range inputs {
		if len(row) != m.features {
			return nil, fmt.Errorf("%w: input row %d has %d features, want %d", pkgerrors.ErrInvalidData, i, len(row), m.features)
		}
		out := make([]float64, m.classes)
		for c := 0; c < m.classes; c++ {
			sum := m.bias[c]
			w := m.weights[c*m.features : (c+1)*m.features]
			for f, x := range row {
				sum += w[f] * x
			}
			out[c] = sum
		}
		outputs[i] = out
	}
	m.inputs = inputs

	return outputs, nil
}

func (m *Linear) Backward(grad [][]float64) error {
	if len(grad) != len(m.inputs) {
		return fmt.Errorf("%w: %d gradient rows for %d cached inputs", pkgerrors.ErrInvalidData, len(grad), len(m.inputs))
	}

	for i, g := range grad {
		row := m.inputs[i]
		for c := 0; c < m.classes; c++ {
			gc := g[c]
			m.bGrad[c] += gc
			wg := m.wGrad[c*m.features : (c+1)*m.features]
			for f, x := range row {
				wg[f] += gc * x
			}
		}
	}

	return nil
}

func (m *Linear) TrainMode() {
	m.training = true
}

func (m *Linear) EvalMode() {
	m.training = false
}

func (m *Linear) Parameters() []Parameter {
	return []Parameter{
		{Name: "weights", Data: m.weights, Grad: m.wGrad},
		{Name: "bias", Data: m.bias, Grad: m.bGrad},
	}
}

func (m *Linear) Snapshot() ([]byte, error) {
	return cbor.Marshal(linearState{
		Classes:  m.classes,
		Features: m.features,
		Weights:  m.weights,
		Bias:     m.bias,
	})
}

func (m *Linear) Restore(data []byte) error {
	var st linearState
	if err := cbor.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore linear model: %w", err)
	}
	if st.Classes != m.classes || st.Features != m.features {
		return fmt.Errorf("%w: snapshot shape %dx%d, model %dx%d", pkgerrors.ErrInvalidData, st.Classes, st.Features, m.classes, m.features)
	}
	copy(m.weights, st.Weights)
	copy(m.bias, st.Bias)

	return nil
}
