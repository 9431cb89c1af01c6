// Package checkpoint persists durable snapshots of model and optimizer
// state. Two slots exist: latest, overwritten on every save, and best,
// written only when the caller marks a checkpoint as best. Slots survive
// crashes independently. The orchestrator only writes; loading serves the
// CLI resume path.
package checkpoint

import "context"

type Slot string

const (
	SlotLatest Slot = "latest"
	SlotBest   Slot = "best"
)

// Checkpoint is one recoverable snapshot. Model and optimizer state are
// opaque blobs passed through untouched. IsBest is a save directive and is
// not persisted.
type Checkpoint struct {
	Epoch          int     `cbor:"epoch"`
	ModelState     []byte  `cbor:"model_state"`
	OptimizerState []byte  `cbor:"optimizer_state"`
	Metric         float64 `cbor:"metric"`
	BestMetric     float64 `cbor:"best_metric"`
	IsBest         bool    `cbor:"-"`
}

type Store interface {
	Save(ctx context.Context, cp Checkpoint) error
	Load(ctx context.Context, slot Slot) (Checkpoint, error)
	Close() error
}
