package dataset

import (
	"fmt"
	"math/rand"

	pkgerrors "github.com/absmach/coach/pkg/errors"
)

// Synthetic draws samples from one Gaussian cluster per class. It stands
// in for an external dataset collaborator so the engine can run end to end
// without one.
func Synthetic(classes, features, samples int, seed int64) ([][]float64, []int, error) {
	if classes < 2 || features < 1 || samples < classes {
		return nil, nil, fmt.Errorf("%w: %d classes, %d features, %d samples", pkgerrors.ErrInvalidData, classes, features, samples)
	}

	rng := rand.New(rand.NewSource(seed))
	centers := make([][]float64, classes)
	for c := range centers {
		center := make([]float64, features)
		for f := range center {
			center[f] = rng.NormFloat64() * 3
		}
		centers[c] = center
	}

	inputs := make([][]float64, samples)
	targets := make([]int, samples)
	for i := range inputs {
		c := i % classes
		row := make([]float64, features)
		for f := range row {
			row[f] = centers[c][f] + rng.NormFloat64()
		}
		inputs[i] = row
		targets[i] = c
	}

	return inputs, targets, nil
}

// Split partitions samples into train and test views. The returned slices
// index the same underlying rows but neither view mutates the other.
func Split(inputs [][]float64, targets []int, testFraction float64, seed int64) (trainIn [][]float64, trainT []int, testIn [][]float64, testT []int, err error) {
	if len(inputs) != len(targets) {
		return nil, nil, nil, nil, fmt.Errorf("%w: %d inputs for %d targets", pkgerrors.ErrInvalidData, len(inputs), len(targets))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("%w: test fraction %f", pkgerrors.ErrInvalidData, testFraction)
	}

	order := rand.New(rand.NewSource(seed)).Perm(len(targets))
	testN := int(float64(len(targets)) * testFraction)
	if testN == 0 {
		testN = 1
	}

	for i, idx := range order {
		if i < testN {
			testIn = append(testIn, inputs[idx])
			testT = append(testT, targets[idx])

			continue
		}
		trainIn = append(trainIn, inputs[idx])
		trainT = append(trainT, targets[idx])
	}

	return trainIn, trainT, testIn, testT, nil
}
