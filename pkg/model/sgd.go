package model

import (
	"fmt"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/fxamacker/cbor/v2"
)

type SGDConfig struct {
	LearningRate float64
	Momentum     float64
	WeightDecay  float64
}

// SGD implements stochastic gradient descent with classical momentum and
// L2 weight decay over the parameters it was constructed with.
type SGD struct {
	params   []Parameter
	lr       float64
	momentum float64
	decay    float64
	velocity [][]float64
}

type sgdState struct {
	LearningRate float64     `cbor:"learning_rate"`
	Momentum     float64     `cbor:"momentum"`
	WeightDecay  float64     `cbor:"weight_decay"`
	Velocity     [][]float64 `cbor:"velocity"`
}

func NewSGD(params []Parameter, cfg SGDConfig) (*SGD, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no parameters", pkgerrors.ErrInvalidData)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: learning rate %f", pkgerrors.ErrInvalidData, cfg.LearningRate)
	}

	velocity := make([][]float64, len(params))
	for i, p := range params {
		velocity[i] = make([]float64, len(p.Data))
	}

	return &SGD{
		params:   params,
		lr:       cfg.LearningRate,
		momentum: cfg.Momentum,
		decay:    cfg.WeightDecay,
		velocity: velocity,
	}, nil
}

func (o *SGD) ZeroGrad() {
	for _, p := range o.params {
		for i := range p.Grad {
			p.Grad[i] = 0
		}
	}
}

func (o *SGD) Step() error {
	for i, p := range o.params {
		v := o.velocity[i]
		for j := range p.Data {
			g := p.Grad[j] + o.decay*p.Data[j]
			if o.momentum > 0 {
				v[j] = o.momentum*v[j] + g
				g = v[j]
			}
			p.Data[j] -= o.lr * g
		}
	}

	return nil
}

func (o *SGD) SetLearningRate(lr float64) {
	o.lr = lr
}

func (o *SGD) LearningRate() float64 {
	return o.lr
}

func (o *SGD) Snapshot() ([]byte, error) {
	return cbor.Marshal(sgdState{
		LearningRate: o.lr,
		Momentum:     o.momentum,
		WeightDecay:  o.decay,
		Velocity:     o.velocity,
	})
}

func (o *SGD) Restore(data []byte) error {
	var st sgdState
	if err := cbor.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore optimizer: %w", err)
	}
	if len(st.Velocity) != len(o.velocity) {
		return fmt.Errorf("%w: snapshot holds %d buffers, optimizer has %d", pkgerrors.ErrInvalidData, len(st.Velocity), len(o.velocity))
	}
	for i := range o.velocity {
		if len(st.Velocity[i]) != len(o.velocity[i]) {
			return fmt.Errorf("%w: buffer %d size mismatch", pkgerrors.ErrInvalidData, i)
		}
		copy(o.velocity[i], st.Velocity[i])
	}
	o.lr = st.LearningRate
	o.momentum = st.Momentum
	o.decay = st.WeightDecay

	return nil
}
