package middleware

import (
	"context"
	"time"

	"github.com/absmach/coach/trainer"
	"github.com/go-kit/kit/metrics"
)

var _ trainer.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     trainer.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc trainer.Service) trainer.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Train(ctx context.Context) (trainer.Summary, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "train").Add(1)
		mm.latency.With("method", "train").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Train(ctx)
}

func (mm *metricsMiddleware) Evaluate(ctx context.Context) (trainer.Metrics, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "evaluate").Add(1)
		mm.latency.With("method", "evaluate").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Evaluate(ctx)
}

func (mm *metricsMiddleware) Profile(ctx context.Context) (trainer.ProfileReport, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "profile").Add(1)
		mm.latency.With("method", "profile").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Profile(ctx)
}

func (mm *metricsMiddleware) Status(ctx context.Context) (trainer.Status, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "status").Add(1)
		mm.latency.With("method", "status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Status(ctx)
}
