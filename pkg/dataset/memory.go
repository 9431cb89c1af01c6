package dataset

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// InMemory batches a fixed sample set. With shuffling enabled, Reset
// re-permutes the iteration order using its own seeded source, so two
// loaders over the same samples never influence each other.
type InMemory struct {
	inputs    [][]float64
	targets   []int
	batchSize int
	order     []int
	pos       int
	rng       *rand.Rand
}

type Option func(*InMemory)

// WithShuffle permutes sample order on every Reset, deterministically for
// a given seed.
func WithShuffle(seed int64) Option {
	return func(l *InMemory) {
		l.rng = rand.New(rand.NewSource(seed))
	}
}

func NewInMemory(inputs [][]float64, targets []int, batchSize int, opts ...Option) (*InMemory, error) {
	if len(inputs) != len(targets) {
		return nil, fmt.Errorf("%w: %d inputs for %d targets", pkgerrors.ErrInvalidData, len(inputs), len(targets))
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size %d", pkgerrors.ErrInvalidData, batchSize)
	}

	l := &InMemory{
		inputs:    inputs,
		targets:   targets,
		batchSize: batchSize,
		order:     make([]int, len(targets)),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Reset()

	return l, nil
}

// Len returns the number of batches per pass.
func (l *InMemory) Len() int {
	return (len(l.targets) + l.batchSize - 1) / l.batchSize
}

func (l *InMemory) Next(_ context.Context) (Batch, error) {
	if l.pos >= len(l.targets) {
		return Batch{}, io.EOF
	}

	end := l.pos + l.batchSize
	if end > len(l.targets) {
		end = len(l.targets)
	}

	batch := Batch{
		Inputs:  make([][]float64, 0, end-l.pos),
		Targets: make([]int, 0, end-l.pos),
	}
	for _, idx := range l.order[l.pos:end] {
		batch.Inputs = append(batch.Inputs, l.inputs[idx])
		batch.Targets = append(batch.Targets, l.targets[idx])
	}
	l.pos = end

	return batch, nil
}

func (l *InMemory) Reset() {
	for i := range l.order {
		l.order[i] = i
	}
	if l.rng != nil {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.pos = 0
}
