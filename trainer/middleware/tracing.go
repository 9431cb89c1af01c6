package middleware

import (
	"context"

	"github.com/absmach/coach/trainer"
	"go.opentelemetry.io/otel/trace"
)

var _ trainer.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    trainer.Service
}

func Tracing(tracer trace.Tracer, svc trainer.Service) trainer.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Train(ctx context.Context) (trainer.Summary, error) {
	ctx, span := tm.tracer.Start(ctx, "train")
	defer span.End()

	return tm.svc.Train(ctx)
}

func (tm *tracing) Evaluate(ctx context.Context) (trainer.Metrics, error) {
	ctx, span := tm.tracer.Start(ctx, "evaluate")
	defer span.End()

	return tm.svc.Evaluate(ctx)
}

func (tm *tracing) Profile(ctx context.Context) (trainer.ProfileReport, error) {
	ctx, span := tm.tracer.Start(ctx, "profile")
	defer span.End()

	return tm.svc.Profile(ctx)
}

func (tm *tracing) Status(ctx context.Context) (trainer.Status, error) {
	ctx, span := tm.tracer.Start(ctx, "status")
	defer span.End()

	return tm.svc.Status(ctx)
}
