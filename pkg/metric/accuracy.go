package metric

import (
	"errors"
	"fmt"
	"sort"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// ErrKExceedsClasses is returned when a requested k is larger than the
// number of classes in the output rows.
var ErrKExceedsClasses = errors.New("k exceeds number of classes")

// TopK returns, for each requested k, the fraction of rows whose target
// class is among the k highest-scored classes. Scores are ranked in
// descending order with the original class index breaking ties, so results
// are deterministic. Pure; no state is kept between calls.
func TopK(outputs [][]float64, targets []int, ks ...int) (map[int]float64, error) {
	if len(outputs) != len(targets) {
		return nil, fmt.Errorf("%w: %d output rows for %d targets", pkgerrors.ErrInvalidData, len(outputs), len(targets))
	}
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: no k values", pkgerrors.ErrInvalidData)
	}

	result := make(map[int]float64, len(ks))
	if len(outputs) == 0 {
		for _, k := range ks {
			result[k] = 0
		}

		return result, nil
	}

	classes := len(outputs[0])
	maxK := 0
	for _, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("%w: k=%d", pkgerrors.ErrInvalidData, k)
		}
		if k > classes {
			return nil, fmt.Errorf("%w: k=%d, classes=%d", ErrKExceedsClasses, k, classes)
		}
		if k > maxK {
			maxK = k
		}
	}

	hits := make(map[int]int, len(ks))
	ranked := make([]int, classes)
	for i, row := range outputs {
		if len(row) != classes {
			return nil, fmt.Errorf("%w: ragged output row %d", pkgerrors.ErrInvalidData, i)
		}
		target := targets[i]
		if target < 0 || target >= classes {
			return nil, fmt.Errorf("%w: target %d out of range", pkgerrors.ErrInvalidData, target)
		}

		for c := range ranked {
			ranked[c] = c
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return row[ranked[a]] > row[ranked[b]]
		})

		rank := classes
		for pos := 0; pos < maxK; pos++ {
			if ranked[pos] == target {
				rank = pos

				break
			}
		}
		for _, k := range ks {
			if rank < k {
				hits[k]++
			}
		}
	}

	n := float64(len(outputs))
	for _, k := range ks {
		result[k] = float64(hits[k]) / n
	}

	return result, nil
}
