package ledger_test

import (
	"path/filepath"
	"testing"

	"github.com/absmach/coach/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progressRows() []ledger.Row {
	return []ledger.Row{
		{Epoch: 1, LR: 0.1, TrainLoss: 2.3, TestLoss: 2.2, TrainAcc: 12, TestAcc: 14},
		{Epoch: 2, LR: 0.1, TrainLoss: 2.0, TestLoss: 1.9, TrainAcc: 25, TestAcc: 27},
		{Epoch: 3, LR: 0.1, TrainLoss: 1.8, TestLoss: ledger.NotEvaluated, TrainAcc: 33, TestAcc: ledger.NotEvaluated},
	}
}

func TestRenderAccuracy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress_acc.png")
	require.NoError(t, ledger.RenderAccuracy(progressRows(), path))
	assert.FileExists(t, path)
}

func TestRenderLoss(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress_loss.png")
	require.NoError(t, ledger.RenderLoss(progressRows(), path))
	assert.FileExists(t, path)
}

func TestRenderEmptyRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, ledger.RenderAccuracy(nil, path))
	assert.FileExists(t, path)
}
