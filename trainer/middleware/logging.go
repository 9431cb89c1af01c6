package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/coach/trainer"
)

var _ trainer.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    trainer.Service
}

func Logging(logger *slog.Logger, svc trainer.Service) trainer.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Train(ctx context.Context) (summary trainer.Summary, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("run",
				slog.String("id", summary.RunID),
				slog.Int("epochs_run", summary.EpochsRun),
				slog.Bool("interrupted", summary.Interrupted),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Train failed", args...)

			return
		}
		lm.logger.Info("Train completed successfully", args...)
	}(time.Now())

	return lm.svc.Train(ctx)
}

func (lm *loggingMiddleware) Evaluate(ctx context.Context) (metrics trainer.Metrics, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Float64("loss", metrics.Loss),
			slog.Float64("top1", metrics.Top1),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Evaluate failed", args...)

			return
		}
		lm.logger.Info("Evaluate completed successfully", args...)
	}(time.Now())

	return lm.svc.Evaluate(ctx)
}

func (lm *loggingMiddleware) Profile(ctx context.Context) (report trainer.ProfileReport, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("batch_size", report.BatchSize),
			slog.String("forward", report.Forward.String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Profile failed", args...)

			return
		}
		lm.logger.Info("Profile completed successfully", args...)
	}(time.Now())

	return lm.svc.Profile(ctx)
}

func (lm *loggingMiddleware) Status(ctx context.Context) (trainer.Status, error) {
	return lm.svc.Status(ctx)
}
