package model

import (
	"fmt"
	"math"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// CrossEntropy is softmax cross entropy over raw logits, averaged across
// the batch. The gradient is (softmax - onehot) / batch.
type CrossEntropy struct{}

func NewCrossEntropy() CrossEntropy {
	return CrossEntropy{}
}

func (CrossEntropy) Loss(outputs [][]float64, targets []int) (float64, error) {
	if len(outputs) != len(targets) {
		return 0, fmt.Errorf("%w: %d output rows for %d targets", pkgerrors.ErrInvalidData, len(outputs), len(targets))
	}
	if len(outputs) == 0 {
		return 0, nil
	}

	var total float64
	for i, row := range outputs {
		target := targets[i]
		if target < 0 || target >= len(row) {
			return 0, fmt.Errorf("%w: target %d out of range", pkgerrors.ErrInvalidData, target)
		}
		probs := softmax(row)
		total += -math.Log(math.Max(probs[target], 1e-12))
	}

	return total / float64(len(outputs)), nil
}

func (CrossEntropy) Gradient(outputs [][]float64, targets []int) ([][]float64, error) {
	if len(outputs) != len(targets) {
		return nil, fmt.Errorf("%w: %d output rows for %d targets", pkgerrors.ErrInvalidData, len(outputs), len(targets))
	}

	n := float64(len(outputs))
	grad := make([][]float64, len(outputs))
	for i, row := range outputs {
		target := targets[i]
		if target < 0 || target >= len(row) {
			return nil, fmt.Errorf("%w: target %d out of range", pkgerrors.ErrInvalidData, target)
		}
		g := softmax(row)
		g[target] -= 1
		for c := range g {
			g[c] /= n
		}
		grad[i] = g
	}

	return grad, nil
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(v - maxLogit)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}
