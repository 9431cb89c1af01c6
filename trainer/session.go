package trainer

import (
	"fmt"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

type State uint8

const (
	Initializing State = iota
	Running
	Interrupted
	Completed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case Interrupted:
		return "Interrupted"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// BestPolicy decides when a checkpoint metric replaces the best so far.
type BestPolicy uint8

const (
	// BestStrict updates best only on strict improvement; ties keep the
	// earlier checkpoint.
	BestStrict BestPolicy = iota
	// BestPreferLatest also updates on ties, preferring the most recent
	// equally good checkpoint.
	BestPreferLatest
)

func (p BestPolicy) Improves(metric, best float64) bool {
	if p == BestPreferLatest {
		return metric >= best
	}

	return metric > best
}

// Session is the orchestrator's working state for one training run. It
// owns current_epoch and best_metric exclusively; collaborators receive
// values by parameter. Interrupted and Completed are terminal.
type Session struct {
	id          string
	startEpoch  int
	totalEpochs int
	state       State
	epoch       int
	best        float64
}

func NewSession(id string, startEpoch, totalEpochs int, best float64) (*Session, error) {
	if totalEpochs <= 0 {
		return nil, fmt.Errorf("%w: total epochs %d", pkgerrors.ErrInvalidData, totalEpochs)
	}
	if startEpoch < 0 || startEpoch >= totalEpochs {
		return nil, fmt.Errorf("%w: start epoch %d of %d", pkgerrors.ErrInvalidData, startEpoch, totalEpochs)
	}

	return &Session{
		id:          id,
		startEpoch:  startEpoch,
		totalEpochs: totalEpochs,
		epoch:       startEpoch,
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Epoch() int {
	return s.epoch
}

func (s *Session) TotalEpochs() int {
	return s.totalEpochs
}

func (s *Session) Best() float64 {
	return s.best
}

func (s *Session) Terminal() bool {
	return s.state == Interrupted || s.state == Completed
}

// Begin enters Running at the start epoch with the seed best metric.
func (s *Session) Begin(best float64) error {
	if s.state != Initializing {
		return fmt.Errorf("cannot begin session in state %s", s.state)
	}
	s.state = Running
	s.epoch = s.startEpoch
	s.best = best

	return nil
}

// Observe records an evaluate-pass metric for the current epoch and
// reports whether it becomes the new best under the policy.
func (s *Session) Observe(metric float64, policy BestPolicy) bool {
	if s.state != Running {
		return false
	}
	if !policy.Improves(metric, s.best) {
		return false
	}
	s.best = metric

	return true
}

// Advance moves to the next epoch, or to Completed when the range is
// exhausted. It reports whether the session is still running.
func (s *Session) Advance() bool {
	if s.state != Running {
		return false
	}
	if s.epoch+1 >= s.totalEpochs {
		s.state = Completed

		return false
	}
	s.epoch++

	return true
}

// Interrupt transitions Running to the Interrupted terminal state without
// advancing the epoch.
func (s *Session) Interrupt() {
	if s.state == Running {
		s.state = Interrupted
	}
}
