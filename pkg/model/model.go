// Package model defines the opaque trainable-model contract the epoch
// runner drives, together with reference implementations. Any backend
// satisfying Model, Criterion and Optimizer plugs into the runner
// unchanged; the orchestration layer never inspects state snapshots.
package model

// Parameter is one trainable tensor, flattened, with its gradient
// accumulator. Both slices alias the model's own storage.
type Parameter struct {
	Name string
	Data []float64
	Grad []float64
}

type Model interface {
	// Forward computes one output row of class scores per input row.
	Forward(inputs [][]float64) ([][]float64, error)

	// Backward accumulates parameter gradients from the loss gradient with
	// respect to the outputs of the most recent Forward call.
	Backward(grad [][]float64) error

	// TrainMode enables stochastic layers and gradient bookkeeping.
	TrainMode()

	// EvalMode disables stochastic layers; no call made in this mode may
	// mutate parameters.
	EvalMode()

	Parameters() []Parameter

	// Snapshot serializes the full parameter state as an opaque blob.
	Snapshot() ([]byte, error)

	Restore(data []byte) error
}

type Criterion interface {
	Loss(outputs [][]float64, targets []int) (float64, error)
	Gradient(outputs [][]float64, targets []int) ([][]float64, error)
}

type Optimizer interface {
	ZeroGrad()
	Step() error
	SetLearningRate(lr float64)
	LearningRate() float64
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}
