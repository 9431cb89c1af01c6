package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/absmach/coach/pkg/dataset"
	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/absmach/coach/pkg/metric"
	"github.com/absmach/coach/pkg/model"
)

type Mode string

const (
	Train    Mode = "train"
	Evaluate Mode = "evaluate"
)

// Metrics is the immutable outcome of one full pass over a dataset.
// Averages are weighted by batch example count; batch and data times are
// per-batch averages in seconds.
type Metrics struct {
	Loss      float64 `json:"loss"`
	Top1      float64 `json:"top1"`
	Top5      float64 `json:"top5"`
	BatchTime float64 `json:"batch_time"`
	DataTime  float64 `json:"data_time"`
	Examples  int     `json:"examples"`
	Batches   int     `json:"batches"`
}

// Runner executes one train or evaluate pass. Batches are atomic units:
// cancellation is observed only between batches, so an in-flight
// forward/backward cycle always completes before the runner reacts.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run performs one pass in the given mode. In evaluate mode no parameter
// mutation occurs: gradients are neither computed nor applied. On
// cancellation it returns the averages accumulated so far together with
// ErrInterrupted.
func (r *Runner) Run(ctx context.Context, mode Mode, loader dataset.Loader, m model.Model, criterion model.Criterion, opt model.Optimizer) (Metrics, error) {
	switch mode {
	case Train:
		m.TrainMode()
	case Evaluate:
		m.EvalMode()
	default:
		return Metrics{}, fmt.Errorf("%w: mode %q", pkgerrors.ErrInvalidData, mode)
	}

	losses := metric.NewMeter("loss")
	top1 := metric.NewMeter("top1")
	top5 := metric.NewMeter("top5")
	batchTime := metric.NewMeter("batch_time")
	dataTime := metric.NewMeter("data_time")

	out := func() Metrics {
		return Metrics{
			Loss:      losses.Average(),
			Top1:      top1.Average(),
			Top5:      top5.Average(),
			BatchTime: batchTime.Average(),
			DataTime:  dataTime.Average(),
			Examples:  int(losses.Count()),
			Batches:   int(batchTime.Count()),
		}
	}

	loader.Reset()
	end := time.Now()
	for {
		select {
		case <-ctx.Done():
			return out(), fmt.Errorf("%s pass: %w", mode, pkgerrors.ErrInterrupted)
		default:
		}

		batch, err := loader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out(), fmt.Errorf("next batch: %w", err)
		}
		dataTime.Update(time.Since(end).Seconds(), 1)

		outputs, err := m.Forward(batch.Inputs)
		if err != nil {
			return out(), fmt.Errorf("forward: %w", err)
		}
		loss, err := criterion.Loss(outputs, batch.Targets)
		if err != nil {
			return out(), fmt.Errorf("loss: %w", err)
		}

		accs, err := scoreBatch(outputs, batch.Targets)
		if err != nil {
			return out(), fmt.Errorf("accuracy: %w", err)
		}

		weight := float64(batch.Size())
		losses.Update(loss, weight)
		top1.Update(accs[1], weight)
		top5.Update(accs[topKFor(outputs)], weight)

		if mode == Train && opt != nil {
			opt.ZeroGrad()
			grad, err := criterion.Gradient(outputs, batch.Targets)
			if err != nil {
				return out(), fmt.Errorf("loss gradient: %w", err)
			}
			if err := m.Backward(grad); err != nil {
				return out(), fmt.Errorf("backward: %w", err)
			}
			if err := opt.Step(); err != nil {
				return out(), fmt.Errorf("optimizer step: %w", err)
			}
		}

		batchTime.Update(time.Since(end).Seconds(), 1)
		end = time.Now()
	}

	return out(), nil
}

// scoreBatch computes top-1 and top-k accuracy, clamping k to the class
// count so narrow output heads still report a second metric.
func scoreBatch(outputs [][]float64, targets []int) (map[int]float64, error) {
	k := topKFor(outputs)
	if k == 1 {
		return metric.TopK(outputs, targets, 1)
	}

	return metric.TopK(outputs, targets, 1, k)
}

func topKFor(outputs [][]float64) int {
	if len(outputs) == 0 || len(outputs[0]) >= 5 {
		return 5
	}

	return len(outputs[0])
}
