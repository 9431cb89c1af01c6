package trainer_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/absmach/coach/pkg/dataset"
	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/absmach/coach/pkg/model"
	"github.com/absmach/coach/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoModel returns its inputs as logits, so batch outcomes are fully
// controlled by the test data.
type echoModel struct {
	mode      string
	backwards int
}

func (m *echoModel) Forward(inputs [][]float64) ([][]float64, error) { return inputs, nil }
func (m *echoModel) Backward([][]float64) error {
	m.backwards++

	return nil
}
func (m *echoModel) TrainMode()                    { m.mode = "train" }
func (m *echoModel) EvalMode()                     { m.mode = "eval" }
func (m *echoModel) Parameters() []model.Parameter { return nil }
func (m *echoModel) Snapshot() ([]byte, error)     { return nil, nil }
func (m *echoModel) Restore([]byte) error          { return nil }

type countingOptimizer struct {
	zeros int
	steps int
	lr    float64
}

func (o *countingOptimizer) ZeroGrad() { o.zeros++ }
func (o *countingOptimizer) Step() error {
	o.steps++

	return nil
}
func (o *countingOptimizer) SetLearningRate(lr float64) { o.lr = lr }
func (o *countingOptimizer) LearningRate() float64      { return o.lr }
func (o *countingOptimizer) Snapshot() ([]byte, error)  { return nil, nil }
func (o *countingOptimizer) Restore([]byte) error       { return nil }

// cancellingLoader cancels the run after serving a fixed number of
// batches, simulating an interrupt between batches.
type cancellingLoader struct {
	inner  dataset.Loader
	cancel context.CancelFunc
	after  int
	served int
}

func (l *cancellingLoader) Len() int { return l.inner.Len() }
func (l *cancellingLoader) Next(ctx context.Context) (dataset.Batch, error) {
	b, err := l.inner.Next(ctx)
	if err == nil {
		l.served++
		if l.served == l.after {
			l.cancel()
		}
	}

	return b, err
}
func (l *cancellingLoader) Reset() { l.inner.Reset() }

func twoClassLoader(t *testing.T, batchSize int) dataset.Loader {
	t.Helper()

	// Logit rows double as outputs through echoModel: rows 0-2 rank the
	// target first, row 3 does not.
	inputs := [][]float64{
		{2.0, 1.0},
		{2.0, 1.0},
		{1.0, 2.0},
		{2.0, 1.0},
	}
	targets := []int{0, 0, 1, 1}

	l, err := dataset.NewInMemory(inputs, targets, batchSize)
	require.NoError(t, err)

	return l
}

func TestRunnerEvaluatePass(t *testing.T) {
	t.Parallel()

	m := &echoModel{}
	runner := trainer.NewRunner(slog.Default())

	got, err := runner.Run(context.Background(), trainer.Evaluate, twoClassLoader(t, 3), m, model.NewCrossEntropy(), nil)
	require.NoError(t, err)

	assert.Equal(t, "eval", m.mode)
	assert.Zero(t, m.backwards)
	assert.Equal(t, 4, got.Examples)
	assert.Equal(t, 2, got.Batches)

	// 3 of 4 rows rank their target first; two classes clamp top-k to 2.
	assert.InDelta(t, 0.75, got.Top1, 1e-12)
	assert.InDelta(t, 1.0, got.Top5, 1e-12)
	assert.Positive(t, got.Loss)
}

func TestRunnerTrainPassStepsOptimizer(t *testing.T) {
	t.Parallel()

	m := &echoModel{}
	opt := &countingOptimizer{}
	runner := trainer.NewRunner(slog.Default())

	_, err := runner.Run(context.Background(), trainer.Train, twoClassLoader(t, 2), m, model.NewCrossEntropy(), opt)
	require.NoError(t, err)

	assert.Equal(t, "train", m.mode)
	assert.Equal(t, 2, m.backwards)
	assert.Equal(t, 2, opt.zeros)
	assert.Equal(t, 2, opt.steps)
}

func TestRunnerWeightedAverages(t *testing.T) {
	t.Parallel()

	m := &echoModel{}
	runner := trainer.NewRunner(slog.Default())

	// Batch sizes 3 and 1: the average must weight by examples, not
	// batches. Top1 per batch is 1.0 and 0.0, weighted 3/4 rather than
	// the unweighted 1/2.
	got, err := runner.Run(context.Background(), trainer.Evaluate, twoClassLoader(t, 3), m, model.NewCrossEntropy(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.Top1, 1e-12)
}

func TestRunnerEmptyLoader(t *testing.T) {
	t.Parallel()

	l, err := dataset.NewInMemory(nil, nil, 1)
	require.NoError(t, err)
	runner := trainer.NewRunner(slog.Default())

	got, err := runner.Run(context.Background(), trainer.Evaluate, l, &echoModel{}, model.NewCrossEntropy(), nil)
	require.NoError(t, err)
	assert.Zero(t, got.Examples)
	assert.Zero(t, got.Loss)
	assert.Zero(t, got.Top1)
}

func TestRunnerInterruptedBetweenBatches(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := &cancellingLoader{
		inner:  twoClassLoader(t, 1),
		cancel: cancel,
		after:  2,
	}
	runner := trainer.NewRunner(slog.Default())

	got, err := runner.Run(ctx, trainer.Evaluate, loader, &echoModel{}, model.NewCrossEntropy(), nil)
	assert.ErrorIs(t, err, pkgerrors.ErrInterrupted)

	// The two batches served before cancellation stay in the averages.
	assert.Equal(t, 2, got.Examples)
	assert.Equal(t, 2, got.Batches)
	assert.InDelta(t, 1.0, got.Top1, 1e-12)
}

func TestRunnerCancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := trainer.NewRunner(slog.Default())
	got, err := runner.Run(ctx, trainer.Evaluate, twoClassLoader(t, 2), &echoModel{}, model.NewCrossEntropy(), nil)
	assert.ErrorIs(t, err, pkgerrors.ErrInterrupted)
	assert.Zero(t, got.Examples)
}

func TestRunnerInvalidMode(t *testing.T) {
	t.Parallel()

	runner := trainer.NewRunner(slog.Default())
	_, err := runner.Run(context.Background(), trainer.Mode("profile"), twoClassLoader(t, 2), &echoModel{}, model.NewCrossEntropy(), nil)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidData)
}

func TestRunnerEvaluateLeavesParametersUntouched(t *testing.T) {
	t.Parallel()

	m, err := model.NewMLP(model.Config{Classes: 2, Features: 2, Hidden: 4, Seed: 3})
	require.NoError(t, err)

	before, err := m.Snapshot()
	require.NoError(t, err)

	runner := trainer.NewRunner(slog.Default())
	_, err = runner.Run(context.Background(), trainer.Evaluate, twoClassLoader(t, 2), m, model.NewCrossEntropy(), nil)
	require.NoError(t, err)

	after, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
