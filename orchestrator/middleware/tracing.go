package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/pkg/aggregation"
)

var _ orchestrator.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    orchestrator.Service
}

func Tracing(tracer trace.Tracer, svc orchestrator.Service) orchestrator.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) CreateSession(ctx context.Context, name string) (orchestrator.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "create-session", trace.WithAttributes(
		attribute.String("name", name),
	))
	defer span.End()

	return tm.svc.CreateSession(ctx, name)
}

func (tm *tracing) GetSession(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "get-session", trace.WithAttributes(
		attribute.String("id", sessionID),
	))
	defer span.End()

	return tm.svc.GetSession(ctx, sessionID)
}

func (tm *tracing) ListSessions(ctx context.Context, offset, limit uint64) (orchestrator.SessionPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-sessions", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListSessions(ctx, offset, limit)
}

func (tm *tracing) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := tm.tracer.Start(ctx, "delete-session", trace.WithAttributes(
		attribute.String("id", sessionID),
	))
	defer span.End()

	return tm.svc.DeleteSession(ctx, sessionID)
}

func (tm *tracing) Submit(ctx context.Context, sessionID string, cfg experiment.Config) (orchestrator.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "submit-experiment", trace.WithAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("dataset", string(cfg.Dataset)),
		attribute.String("model", string(cfg.Model)),
		attribute.String("strategy", string(cfg.Strategy.Kind)),
	))
	defer span.End()

	return tm.svc.Submit(ctx, sessionID, cfg)
}

func (tm *tracing) AcknowledgeReflection(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "acknowledge-reflection", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.AcknowledgeReflection(ctx, sessionID)
}

func (tm *tracing) DeferReflection(ctx context.Context, sessionID string) (orchestrator.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "defer-reflection", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.DeferReflection(ctx, sessionID)
}

func (tm *tracing) ListDatasets(ctx context.Context) ([]catalog.Dataset, error) {
	ctx, span := tm.tracer.Start(ctx, "list-datasets")
	defer span.End()

	return tm.svc.ListDatasets(ctx)
}

func (tm *tracing) ListModels(ctx context.Context) ([]catalog.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "list-models")
	defer span.End()

	return tm.svc.ListModels(ctx)
}

func (tm *tracing) ListAggregationMethods(ctx context.Context) ([]aggregation.Method, error) {
	ctx, span := tm.tracer.Start(ctx, "list-aggregation-methods")
	defer span.End()

	return tm.svc.ListAggregationMethods(ctx)
}
