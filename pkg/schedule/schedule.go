package schedule

import (
	"fmt"
	"sort"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// Milestone decays a learning rate by a fixed factor at each configured
// epoch index. The rate for an epoch is computed from scratch rather than
// accumulated, so querying the same epoch twice can never decay twice and
// each milestone fires exactly once over a monotonic epoch sequence.
type Milestone struct {
	initial    float64
	gamma      float64
	milestones []int
}

func NewMilestone(initial float64, milestones []int, gamma float64) (*Milestone, error) {
	if initial <= 0 {
		return nil, fmt.Errorf("%w: initial rate %f", pkgerrors.ErrInvalidData, initial)
	}
	if gamma <= 0 || gamma > 1 {
		return nil, fmt.Errorf("%w: decay factor %f outside (0, 1]", pkgerrors.ErrInvalidData, gamma)
	}

	ms := make([]int, 0, len(milestones))
	seen := make(map[int]struct{}, len(milestones))
	for _, m := range milestones {
		if m < 0 {
			return nil, fmt.Errorf("%w: negative milestone %d", pkgerrors.ErrInvalidData, m)
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		ms = append(ms, m)
	}
	sort.Ints(ms)

	return &Milestone{
		initial:    initial,
		gamma:      gamma,
		milestones: ms,
	}, nil
}

// RateAt returns the learning rate in effect at the given epoch:
// initial * gamma^(number of milestones at or before epoch).
func (s *Milestone) RateAt(epoch int) float64 {
	rate := s.initial
	for _, m := range s.milestones {
		if m > epoch {
			break
		}
		rate *= s.gamma
	}

	return rate
}

func (s *Milestone) Initial() float64 {
	return s.initial
}

// Milestones returns a copy of the configured milestone epochs.
func (s *Milestone) Milestones() []int {
	out := make([]int, len(s.milestones))
	copy(out, s.milestones)

	return out
}
