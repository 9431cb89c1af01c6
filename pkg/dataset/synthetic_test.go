package dataset_test

import (
	"testing"

	"github.com/absmach/coach/pkg/dataset"
	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticShapeAndLabels(t *testing.T) {
	t.Parallel()

	inputs, targets, err := dataset.Synthetic(5, 3, 100, 42)
	require.NoError(t, err)
	require.Len(t, inputs, 100)
	require.Len(t, targets, 100)

	seen := make(map[int]int)
	for i, row := range inputs {
		assert.Len(t, row, 3)
		require.GreaterOrEqual(t, targets[i], 0)
		require.Less(t, targets[i], 5)
		seen[targets[i]]++
	}
	assert.Len(t, seen, 5)
}

func TestSyntheticDeterministic(t *testing.T) {
	t.Parallel()

	aIn, aT, err := dataset.Synthetic(3, 2, 30, 7)
	require.NoError(t, err)
	bIn, bT, err := dataset.Synthetic(3, 2, 30, 7)
	require.NoError(t, err)

	assert.Equal(t, aIn, bIn)
	assert.Equal(t, aT, bT)
}

func TestSyntheticInvalid(t *testing.T) {
	t.Parallel()

	_, _, err := dataset.Synthetic(1, 2, 30, 0)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)

	_, _, err = dataset.Synthetic(10, 2, 5, 0)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)
}

func TestSplitFractions(t *testing.T) {
	t.Parallel()

	inputs, targets, err := dataset.Synthetic(2, 2, 100, 1)
	require.NoError(t, err)

	trainIn, trainT, testIn, testT, err := dataset.Split(inputs, targets, 0.2, 1)
	require.NoError(t, err)

	assert.Len(t, testIn, 20)
	assert.Len(t, testT, 20)
	assert.Len(t, trainIn, 80)
	assert.Len(t, trainT, 80)
}

func TestSplitDisjointAndComplete(t *testing.T) {
	t.Parallel()

	inputs, targets, err := dataset.Synthetic(2, 1, 50, 1)
	require.NoError(t, err)

	trainIn, _, testIn, _, err := dataset.Split(inputs, targets, 0.3, 9)
	require.NoError(t, err)

	seen := make(map[*float64]struct{}, len(inputs))
	for _, row := range trainIn {
		seen[&row[0]] = struct{}{}
	}
	for _, row := range testIn {
		_, dup := seen[&row[0]]
		assert.False(t, dup, "row present in both splits")
		seen[&row[0]] = struct{}{}
	}
	assert.Len(t, seen, len(inputs))
}

func TestSplitInvalidFraction(t *testing.T) {
	t.Parallel()

	inputs, targets, err := dataset.Synthetic(2, 1, 10, 1)
	require.NoError(t, err)

	_, _, _, _, err = dataset.Split(inputs, targets, 0, 1)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)

	_, _, _, _, err = dataset.Split(inputs, targets, 1, 1)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)
}
