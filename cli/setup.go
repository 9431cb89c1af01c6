package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/0x6flab/namegenerator"
	"github.com/absmach/coach/pkg/checkpoint"
	"github.com/absmach/coach/pkg/dataset"
	"github.com/absmach/coach/pkg/ledger"
	"github.com/absmach/coach/pkg/model"
	"github.com/absmach/coach/pkg/monitor"
	"github.com/absmach/coach/pkg/mqtt"
	"github.com/absmach/coach/pkg/prometheus"
	"github.com/absmach/coach/pkg/schedule"
	"github.com/absmach/coach/trainer"
	"github.com/absmach/coach/trainer/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

const svcName = "coach"

// runtime bundles everything a command needs once wiring is done.
type runtime struct {
	svc       trainer.Service
	ledger    ledger.Ledger
	store     checkpoint.Store
	publisher mqtt.Publisher
	logger    *slog.Logger
}

func (r *runtime) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Error("failed to close checkpoint store", slog.Any("error", err))
		}
	}
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			r.logger.Error("failed to close progress ledger", slog.Any("error", err))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.Disconnect(context.Background()); err != nil {
			r.logger.Error("failed to disconnect mqtt publisher", slog.Any("error", err))
		}
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	return logger, nil
}

// setup wires the full training stack. When durable is false the
// checkpoint store, ledger and publisher are skipped, which is all the
// evaluate and profile commands need.
func setup(ctx context.Context, cfg envConfig, durable bool, logger *slog.Logger) (*runtime, error) {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.RunName == "" {
		cfg.RunName = namegenerator.NewGenerator().Generate()
	}
	logger = logger.With(slog.String("run_id", cfg.RunID), slog.String("run_name", cfg.RunName))

	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63n(10000) + 1
		logger.InfoContext(ctx, "generated random seed", slog.Int64("seed", cfg.Seed))
	}

	inputs, targets, err := dataset.Synthetic(cfg.Classes, cfg.Features, cfg.Samples, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dataset: %w", err)
	}
	trainIn, trainT, testIn, testT, err := dataset.Split(inputs, targets, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	trainSet, err := dataset.NewInMemory(trainIn, trainT, cfg.TrainBatch, dataset.WithShuffle(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create train loader: %w", err)
	}
	testSet, err := dataset.NewInMemory(testIn, testT, cfg.TestBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to create test loader: %w", err)
	}

	registry := model.Builtin()
	m, err := registry.Build(cfg.Architecture, model.Config{
		Classes:  cfg.Classes,
		Features: cfg.Features,
		Hidden:   cfg.Hidden,
		Dropout:  cfg.Dropout,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	opt, err := model.NewSGD(m.Parameters(), model.SGDConfig{
		LearningRate: cfg.LearningRate,
		Momentum:     cfg.Momentum,
		WeightDecay:  cfg.WeightDecay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create optimizer: %w", err)
	}

	sched, err := schedule.NewMilestone(cfg.LearningRate, cfg.Schedule, cfg.Gamma)
	if err != nil {
		return nil, fmt.Errorf("failed to create learning rate schedule: %w", err)
	}

	rt := &runtime{logger: logger}

	if durable {
		store, err := checkpoint.NewStore(cfg.Checkpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		rt.store = store

		ldg, err := ledger.NewLedger(cfg.Ledger)
		if err != nil {
			rt.close()

			return nil, fmt.Errorf("failed to create progress ledger: %w", err)
		}
		rt.ledger = ldg

		if cfg.MQTTAddress != "" {
			pub, err := mqtt.NewPublisher(cfg.MQTTAddress, cfg.MQTTQoS, svcName+"-"+cfg.RunID, cfg.MQTTUsername, cfg.MQTTPassword, cfg.MQTTTimeout, logger)
			if err != nil {
				rt.close()

				return nil, fmt.Errorf("failed to initialize mqtt publisher: %w", err)
			}
			rt.publisher = pub
			ldg = ledger.WithPublisher(ldg, pub, cfg.MQTTTopic, logger)
		}
		rt.ledger = ldg
	}

	svcCfg := trainer.Config{
		RunID:      cfg.RunID,
		StartEpoch: cfg.StartEpoch,
		Epochs:     cfg.Epochs,
		BestPolicy: bestPolicy(cfg.BestPolicy),
	}
	if durable {
		svcCfg.ArtifactsDir = cfg.ArtifactsDir
	}

	if cfg.Resume {
		if rt.store == nil {
			store, err := checkpoint.NewStore(cfg.Checkpoint)
			if err != nil {
				return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
			}
			rt.store = store
		}
		cp, err := rt.store.Load(ctx, checkpoint.SlotLatest)
		if err != nil {
			rt.close()

			return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
		}
		if err := m.Restore(cp.ModelState); err != nil {
			rt.close()

			return nil, fmt.Errorf("failed to restore model state: %w", err)
		}
		if err := opt.Restore(cp.OptimizerState); err != nil {
			rt.close()

			return nil, fmt.Errorf("failed to restore optimizer state: %w", err)
		}
		svcCfg.StartEpoch = cp.Epoch
		svcCfg.BestMetric = cp.BestMetric
		logger.InfoContext(ctx, "resumed from checkpoint",
			slog.Int("start_epoch", cp.Epoch),
			slog.Float64("best_metric", cp.BestMetric))
	}

	var mon *monitor.Process
	if cfg.Monitor {
		mon, err = monitor.NewProcess(logger)
		if err != nil {
			rt.close()

			return nil, fmt.Errorf("failed to initialize process monitor: %w", err)
		}
	}

	svc, err := trainer.NewService(svcCfg, m, model.NewCrossEntropy(), opt, sched, trainSet, testSet, rt.store, rt.ledger, mon, logger)
	if err != nil {
		rt.close()

		return nil, fmt.Errorf("failed to create trainer service: %w", err)
	}
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(noop.NewTracerProvider().Tracer(svcName), svc)
	counter, latency := prometheus.MakeMetrics(svcName, "trainer")
	svc = middleware.Metrics(counter, latency, svc)
	rt.svc = svc

	return rt, nil
}

func bestPolicy(name string) trainer.BestPolicy {
	if name == "latest" {
		return trainer.BestPreferLatest
	}

	return trainer.BestStrict
}
