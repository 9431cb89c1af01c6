// Package ledger records one immutable summary row per epoch. Rows are
// append-only and never edited; backends guarantee durability on Flush.
package ledger

// NotEvaluated is the durable encoding for a metric that was never
// computed, e.g. the evaluate pass of an interrupted epoch. Accuracy and
// cross-entropy loss are non-negative, so the value is unambiguous in the
// persisted log.
const NotEvaluated = -1.0

type Row struct {
	Epoch     int     `json:"epoch"     db:"epoch"`
	LR        float64 `json:"lr"        db:"lr"`
	TrainLoss float64 `json:"train_loss" db:"train_loss"`
	TestLoss  float64 `json:"test_loss"  db:"test_loss"`
	TrainAcc  float64 `json:"train_acc"  db:"train_acc"`
	TestAcc   float64 `json:"test_acc"   db:"test_acc"`
}

// Evaluated reports whether the row's evaluate-pass metrics were recorded.
func (r Row) Evaluated() bool {
	return r.TestAcc != NotEvaluated
}

type Ledger interface {
	Append(row Row) error
	Flush() error
	Rows() []Row
	Close() error
}
