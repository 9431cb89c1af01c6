package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/absmach/coach/pkg/checkpoint"
	"github.com/absmach/coach/pkg/dataset"
	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/absmach/coach/pkg/ledger"
	"github.com/absmach/coach/pkg/model"
	"github.com/absmach/coach/pkg/monitor"
	"github.com/absmach/coach/pkg/schedule"
)

const (
	accuracyPlotFile = "progress_acc.png"
	lossPlotFile     = "progress_loss.png"
)

type Service interface {
	// Train runs the full epoch loop: LR step, train pass, evaluate pass,
	// checkpoint save and ledger append per epoch entered. Interruption is
	// graceful and reported through the summary, not as an error.
	Train(ctx context.Context) (Summary, error)

	// Evaluate performs a single evaluate pass with no checkpointing.
	Evaluate(ctx context.Context) (Metrics, error)

	// Profile times one forward call over one batch. No metric
	// aggregation, no checkpointing.
	Profile(ctx context.Context) (ProfileReport, error)

	Status(ctx context.Context) (Status, error)
}

type Summary struct {
	RunID       string  `json:"run_id"`
	BestMetric  float64 `json:"best_metric"`
	EpochsRun   int     `json:"epochs_run"`
	Interrupted bool    `json:"interrupted"`
}

type ProfileReport struct {
	BatchSize int           `json:"batch_size"`
	Features  int           `json:"features"`
	Classes   int           `json:"classes"`
	Forward   time.Duration `json:"forward"`
}

type Status struct {
	RunID       string  `json:"run_id"`
	State       string  `json:"state"`
	Epoch       int     `json:"epoch"`
	TotalEpochs int     `json:"total_epochs"`
	BestMetric  float64 `json:"best_metric"`
}

type Config struct {
	RunID        string
	StartEpoch   int
	Epochs       int
	BestMetric   float64
	BestPolicy   BestPolicy
	ArtifactsDir string
}

type service struct {
	cfg       Config
	model     model.Model
	criterion model.Criterion
	optimizer model.Optimizer
	schedule  *schedule.Milestone
	trainSet  dataset.Loader
	testSet   dataset.Loader
	store     checkpoint.Store
	ledger    ledger.Ledger
	runner    *Runner
	monitor   *monitor.Process
	logger    *slog.Logger

	mu     sync.RWMutex
	status *Status
}

func NewService(
	cfg Config,
	m model.Model,
	criterion model.Criterion,
	opt model.Optimizer,
	sched *schedule.Milestone,
	trainSet, testSet dataset.Loader,
	store checkpoint.Store,
	ldg ledger.Ledger,
	mon *monitor.Process,
	logger *slog.Logger,
) (Service, error) {
	if m == nil || criterion == nil || sched == nil {
		return nil, fmt.Errorf("%w: missing model, criterion or schedule", pkgerrors.ErrInvalidData)
	}
	if trainSet == nil || testSet == nil {
		return nil, fmt.Errorf("%w: missing dataset loaders", pkgerrors.ErrInvalidData)
	}

	return &service{
		cfg:       cfg,
		model:     m,
		criterion: criterion,
		optimizer: opt,
		schedule:  sched,
		trainSet:  trainSet,
		testSet:   testSet,
		store:     store,
		ledger:    ldg,
		runner:    NewRunner(logger),
		monitor:   mon,
		logger:    logger,
	}, nil
}

func (svc *service) Train(ctx context.Context) (Summary, error) {
	if svc.optimizer == nil {
		return Summary{}, fmt.Errorf("%w: train mode requires an optimizer", pkgerrors.ErrInvalidData)
	}
	if svc.store == nil || svc.ledger == nil {
		return Summary{}, fmt.Errorf("%w: train mode requires a checkpoint store and a ledger", pkgerrors.ErrInvalidData)
	}

	sess, err := NewSession(svc.cfg.RunID, svc.cfg.StartEpoch, svc.cfg.Epochs, svc.cfg.BestMetric)
	if err != nil {
		return Summary{}, err
	}
	if err := sess.Begin(svc.cfg.BestMetric); err != nil {
		return Summary{}, err
	}
	svc.publishStatus(sess)

	epochsRun := 0
	for {
		epoch := sess.Epoch()

		lr := svc.schedule.RateAt(epoch)
		if lr != svc.optimizer.LearningRate() {
			svc.optimizer.SetLearningRate(lr)
		}
		svc.logger.InfoContext(ctx, "starting epoch",
			slog.Int("epoch", epoch+1),
			slog.Int("total", sess.TotalEpochs()),
			slog.Float64("lr", lr))

		interrupted := false
		trainMetrics, err := svc.runner.Run(ctx, Train, svc.trainSet, svc.model, svc.criterion, svc.optimizer)
		switch {
		case errors.Is(err, pkgerrors.ErrInterrupted):
			interrupted = true
		case err != nil:
			// Hard compute failures abort with no checkpoint for this
			// epoch, unlike interruption.
			return Summary{}, fmt.Errorf("train pass at epoch %d: %w", epoch, err)
		}

		var testMetrics *Metrics
		if !interrupted {
			tm, err := svc.runner.Run(ctx, Evaluate, svc.testSet, svc.model, svc.criterion, nil)
			switch {
			case errors.Is(err, pkgerrors.ErrInterrupted):
				interrupted = true
			case err != nil:
				return Summary{}, fmt.Errorf("evaluate pass at epoch %d: %w", epoch, err)
			default:
				testMetrics = &tm
			}
		}

		metricVal := ledger.NotEvaluated
		isBest := false
		if testMetrics != nil {
			metricVal = testMetrics.Top1
			isBest = sess.Observe(metricVal, svc.cfg.BestPolicy)
		}

		if err := svc.saveEpoch(ctx, sess, epoch, lr, trainMetrics, testMetrics, metricVal, isBest); err != nil {
			return Summary{}, err
		}
		epochsRun++

		if svc.monitor != nil {
			svc.monitor.LogEpoch(ctx, epoch)
		}

		if interrupted {
			svc.logger.WarnContext(ctx, "caught interrupt", slog.Int("epoch", epoch+1))
			sess.Interrupt()
			svc.publishStatus(sess)

			break
		}
		running := sess.Advance()
		svc.publishStatus(sess)
		if !running {
			break
		}
	}

	if err := svc.finalize(ctx); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:       sess.ID(),
		BestMetric:  sess.Best(),
		EpochsRun:   epochsRun,
		Interrupted: sess.State() == Interrupted,
	}
	svc.logger.InfoContext(ctx, "training finished",
		slog.String("state", sess.State().String()),
		slog.Float64("best_metric", summary.BestMetric),
		slog.Int("epochs_run", summary.EpochsRun))

	return summary, nil
}

// saveEpoch performs the exactly-once checkpoint save and ledger append
// for an entered epoch, whether it completed normally or was interrupted.
func (svc *service) saveEpoch(ctx context.Context, sess *Session, epoch int, lr float64, trainMetrics Metrics, testMetrics *Metrics, metricVal float64, isBest bool) error {
	modelState, err := svc.model.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot model: %w", err)
	}
	optState, err := svc.optimizer.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot optimizer: %w", err)
	}

	cp := checkpoint.Checkpoint{
		Epoch:          epoch + 1,
		ModelState:     modelState,
		OptimizerState: optState,
		Metric:         metricVal,
		BestMetric:     sess.Best(),
		IsBest:         isBest,
	}
	if err := svc.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint at epoch %d: %w", epoch, err)
	}

	row := ledger.Row{
		Epoch:     epoch,
		LR:        lr,
		TrainLoss: trainMetrics.Loss,
		TrainAcc:  trainMetrics.Top1,
		TestLoss:  ledger.NotEvaluated,
		TestAcc:   ledger.NotEvaluated,
	}
	if testMetrics != nil {
		row.TestLoss = testMetrics.Loss
		row.TestAcc = testMetrics.Top1
	}
	if err := svc.ledger.Append(row); err != nil {
		return fmt.Errorf("append progress row at epoch %d: %w", epoch, err)
	}

	return nil
}

func (svc *service) finalize(ctx context.Context) error {
	if err := svc.ledger.Flush(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}

	if svc.cfg.ArtifactsDir == "" {
		return nil
	}

	rows := svc.ledger.Rows()
	if err := ledger.RenderAccuracy(rows, filepath.Join(svc.cfg.ArtifactsDir, accuracyPlotFile)); err != nil {
		return err
	}
	if err := ledger.RenderLoss(rows, filepath.Join(svc.cfg.ArtifactsDir, lossPlotFile)); err != nil {
		return err
	}
	svc.logger.InfoContext(ctx, "rendered progress plots", slog.String("dir", svc.cfg.ArtifactsDir))

	return nil
}

func (svc *service) Evaluate(ctx context.Context) (Metrics, error) {
	return svc.runner.Run(ctx, Evaluate, svc.testSet, svc.model, svc.criterion, nil)
}

func (svc *service) Profile(ctx context.Context) (ProfileReport, error) {
	svc.testSet.Reset()
	batch, err := svc.testSet.Next(ctx)
	if err != nil {
		return ProfileReport{}, fmt.Errorf("fetch profile batch: %w", err)
	}

	svc.model.EvalMode()
	start := time.Now()
	outputs, err := svc.model.Forward(batch.Inputs)
	if err != nil {
		return ProfileReport{}, fmt.Errorf("profile forward: %w", err)
	}
	elapsed := time.Since(start)

	report := ProfileReport{
		BatchSize: batch.Size(),
		Forward:   elapsed,
	}
	if len(batch.Inputs) > 0 {
		report.Features = len(batch.Inputs[0])
	}
	if len(outputs) > 0 {
		report.Classes = len(outputs[0])
	}

	return report, nil
}

func (svc *service) Status(_ context.Context) (Status, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if svc.status == nil {
		return Status{
			RunID:       svc.cfg.RunID,
			State:       Initializing.String(),
			Epoch:       svc.cfg.StartEpoch,
			TotalEpochs: svc.cfg.Epochs,
			BestMetric:  svc.cfg.BestMetric,
		}, nil
	}

	return *svc.status, nil
}

// publishStatus snapshots the session for concurrent Status readers; the
// live session stays owned by the Train goroutine.
func (svc *service) publishStatus(sess *Session) {
	st := Status{
		RunID:       sess.ID(),
		State:       sess.State().String(),
		Epoch:       sess.Epoch(),
		TotalEpochs: sess.TotalEpochs(),
		BestMetric:  sess.Best(),
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.status = &st
}
