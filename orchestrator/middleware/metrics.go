package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/pkg/aggregation"
)

var _ orchestrator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     orchestrator.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc orchestrator.Service) orchestrator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) CreateSession(ctx context.Context, name string) (orchestrator.Session, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "create-session").Add(1)
		mm.latency.With("method", "create-session").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateSession(ctx, name)
}

func (mm *metricsMiddleware) GetSession(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-session").Add(1)
		mm.latency.With("method", "get-session").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetSession(ctx, sessionID)
}

func (mm *metricsMiddleware) ListSessions(ctx context.Context, offset, limit uint64) (orchestrator.SessionPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-sessions").Add(1)
		mm.latency.With("method", "list-sessions").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListSessions(ctx, offset, limit)
}

func (mm *metricsMiddleware) DeleteSession(ctx context.Context, sessionID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "delete-session").Add(1)
		mm.latency.With("method", "delete-session").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DeleteSession(ctx, sessionID)
}

func (mm *metricsMiddleware) Submit(ctx context.Context, sessionID string, cfg experiment.Config) (orchestrator.Session, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "submit-experiment").Add(1)
		mm.latency.With("method", "submit-experiment").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Submit(ctx, sessionID, cfg)
}

func (mm *metricsMiddleware) AcknowledgeReflection(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "acknowledge-reflection").Add(1)
		mm.latency.With("method", "acknowledge-reflection").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.AcknowledgeReflection(ctx, sessionID)
}

func (mm *metricsMiddleware) DeferReflection(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "defer-reflection").Add(1)
		mm.latency.With("method", "defer-reflection").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DeferReflection(ctx, sessionID)
}

func (mm *metricsMiddleware) ListDatasets(ctx context.Context) ([]catalog.Dataset, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-datasets").Add(1)
		mm.latency.With("method", "list-datasets").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListDatasets(ctx)
}

func (mm *metricsMiddleware) ListModels(ctx context.Context) ([]catalog.Model, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-models").Add(1)
		mm.latency.With("method", "list-models").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListModels(ctx)
}

func (mm *metricsMiddleware) ListAggregationMethods(ctx context.Context) ([]aggregation.Method, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-aggregation-methods").Add(1)
		mm.latency.With("method", "list-aggregation-methods").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListAggregationMethods(ctx)
}
