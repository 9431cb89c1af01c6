package model

import (
	"fmt"
	"math"
	"math/rand"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/fxamacker/cbor/v2"
)

// MLP is a two layer perceptron with ReLU activation and optional inverted
// dropout on the hidden layer. Dropout is active in train mode only, so
// evaluation is deterministic and mutates nothing.
type MLP struct {
	classes  int
	features int
	hidden   int
	dropout  float64
	training bool
	rng      *rand.Rand

	w1, b1, w2, b2             []float64
	w1Grad, b1Grad             []float64
	w2Grad, b2Grad             []float64
	inputs                     [][]float64
	hiddenPre, hiddenOut, mask [][]float64
}

type mlpState struct {
	Classes  int       `cbor:"classes"`
	Features int       `cbor:"features"`
	Hidden   int       `cbor:"hidden"`
	W1       []float64 `cbor:"w1"`
	B1       []float64 `cbor:"b1"`
	W2       []float64 `cbor:"w2"`
	B2       []float64 `cbor:"b2"`
}

func NewMLP(cfg Config) (*MLP, error) {
	if cfg.Classes < 2 || cfg.Features < 1 {
		return nil, fmt.Errorf("%w: %d classes, %d features", pkgerrors.ErrInvalidData, cfg.Classes, cfg.Features)
	}
	if cfg.Hidden < 1 {
		return nil, fmt.Errorf("%w: hidden size %d", pkgerrors.ErrInvalidData, cfg.Hidden)
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, fmt.Errorf("%w: dropout %f outside [0, 1)", pkgerrors.ErrInvalidData, cfg.Dropout)
	}

	m := &MLP{
		classes:  cfg.Classes,
		features: cfg.Features,
		hidden:   cfg.Hidden,
		dropout:  cfg.Dropout,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		w1:       make([]float64, cfg.Hidden*cfg.Features),
		b1:       make([]float64, cfg.Hidden),
		w2:       make([]float64, cfg.Classes*cfg.Hidden),
		b2:       make([]float64, cfg.Classes),
		w1Grad:   make([]float64, cfg.Hidden*cfg.Features),
		b1Grad:   make([]float64, cfg.Hidden),
		w2Grad:   make([]float64, cfg.Classes*cfg.Hidden),
		b2Grad:   make([]float64, cfg.Classes),
	}

	init := rand.New(rand.NewSource(cfg.Seed + 1))
	scale1 := math.Sqrt(2 / float64(cfg.Features))
	for i := range m.w1 {
		m.w1[i] = init.NormFloat64() * scale1
	}
	scale2 := math.Sqrt(2 / float64(cfg.Hidden))
	for i := range m.w2 {
		m.w2[i] = init.NormFloat64() * scale2
	}

	return m, nil
}

func (m *MLP) Forward(inputs [][]float64) ([][]float64, error) {
	n := len(inputs)
	outputs := make([][]float64, n)
	m.inputs = inputs
	m.hiddenPre = make([][]float64, n)
	m.hiddenOut = make([][]float64, n)
	m.mask = make([][]float64, n)

	useDropout := m.training && m.dropout > 0
	keep := 1 - m.dropout

	for i, row := range inputs {
		if len(row) != m.features {
			return nil, fmt.Errorf("%w: input row %d has %d features, want %d", pkgerrors.ErrInvalidData, i, len(row), m.features)
		}

		pre := make([]float64, m.hidden)
		act := make([]float64, m.hidden)
		var mask []float64
		if useDropout {
			mask = make([]float64, m.hidden)
		}
		for h := 0; h < m.hidden; h++ {
			sum := m.b1[h]
			w := m.w1[h*m.features : (h+1)*m.features]
			for f, x := range row {
				sum += w[f] * x
			}
			pre[h] = sum
			if sum > 0 {
				act[h] = sum
			}
			if useDropout {
				if m.rng.Float64() < keep {
					mask[h] = 1 / keep
				}
				act[h] *= mask[h]
			}
		}

		out := make([]float64, m.classes)
		for c := 0; c < m.classes; c++ {
			sum := m.b2[c]
			w := m.w2[c*m.hidden : (c+1)*m.hidden]
			for h, a := range act {
				sum += w[h] * a
			}
			out[c] = sum
		}

		m.hiddenPre[i] = pre
		m.hiddenOut[i] = act
		m.mask[i] = mask
		outputs[i] = out
	}

	return outputs, nil
}

func (m *MLP) Backward(grad [][]float64) error {
	if len(grad) != len(m.inputs) {
		return fmt.Errorf("%w: %d gradient rows for %d cached inputs", pkgerrors.ErrInvalidData, len(grad), len(m.inputs))
	}

	for i, g := range grad {
		act := m.hiddenOut[i]
		pre := m.hiddenPre[i]
		mask := m.mask[i]
		row := m.inputs[i]

		dAct := make([]float64, m.hidden)
		for c := 0; c < m.classes; c++ {
			gc := g[c]
			m.b2Grad[c] += gc
			wg := m.w2Grad[c*m.hidden : (c+1)*m.hidden]
			w := m.w2[c*m.hidden : (c+1)*m.hidden]
			for h := 0; h < m.hidden; h++ {
				wg[h] += gc * act[h]
				dAct[h] += gc * w[h]
			}
		}

		for h := 0; h < m.hidden; h++ {
			d := dAct[h]
			if mask != nil {
				d *= mask[h]
			}
			if pre[h] <= 0 {
				continue
			}
			m.b1Grad[h] += d
			wg := m.w1Grad[h*m.features : (h+1)*m.features]
			for f, x := range row {
				wg[f] += d * x
			}
		}
	}

	return nil
}

func (m *MLP) TrainMode() {
	m.training = true
}

func (m *MLP) EvalMode() {
	m.training = false
}

func (m *MLP) Parameters() []Parameter {
	return []Parameter{
		{Name: "w1", Data: m.w1, Grad: m.w1Grad},
		{Name: "b1", Data: m.b1, Grad: m.b1Grad},
		{Name: "w2", Data: m.w2, Grad: m.w2Grad},
		{Name: "b2", Data: m.b2, Grad: m.b2Grad},
	}
}

func (m *MLP) Snapshot() ([]byte, error) {
	return cbor.Marshal(mlpState{
		Classes:  m.classes,
		Features: m.features,
		Hidden:   m.hidden,
		W1:       m.w1,
		B1:       m.b1,
		W2:       m.w2,
		B2:       m.b2,
	})
}

func (m *MLP) Restore(data []byte) error {
	var st mlpState
	if err := cbor.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore mlp model: %w", err)
	}
	if st.Classes != m.classes || st.Features != m.features || st.Hidden != m.hidden {
		return fmt.Errorf("%w: snapshot shape does not match model", pkgerrors.ErrInvalidData)
	}
	copy(m.w1, st.W1)
	copy(m.b1, st.B1)
	copy(m.w2, st.W2)
	copy(m.b2, st.B2)

	return nil
}
