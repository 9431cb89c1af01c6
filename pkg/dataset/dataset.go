// Package dataset provides the batch-iteration contract the epoch runner
// consumes, plus an in-memory loader and a synthetic data generator used
// by the reference CLI. Loaders are restartable and finite; train and test
// splits are independent views that never share mutable state.
package dataset

import "context"

// Batch is one group of examples processed in a single forward/backward
// cycle.
type Batch struct {
	Inputs  [][]float64
	Targets []int
}

func (b Batch) Size() int {
	return len(b.Targets)
}

// Loader yields batches in iteration order. Next returns io.EOF once the
// sequence is exhausted; Reset restarts it (reshuffling when configured).
type Loader interface {
	Len() int
	Next(ctx context.Context) (Batch, error)
	Reset()
}
