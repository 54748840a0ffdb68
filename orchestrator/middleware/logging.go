package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/pkg/aggregation"
)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    orchestrator.Service
}

func Logging(logger *slog.Logger, svc orchestrator.Service) orchestrator.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) CreateSession(ctx context.Context, name string) (resp orchestrator.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", resp.ID),
				slog.String("name", resp.Name),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Create session failed", args...)

			return
		}
		lm.logger.Info("Create session completed successfully", args...)
	}(time.Now())

	return lm.svc.CreateSession(ctx, name)
}

func (lm *loggingMiddleware) GetSession(ctx context.Context, sessionID string) (resp orchestrator.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get session failed", args...)

			return
		}
		lm.logger.Info("Get session completed successfully", args...)
	}(time.Now())

	return lm.svc.GetSession(ctx, sessionID)
}

func (lm *loggingMiddleware) ListSessions(ctx context.Context, offset, limit uint64) (resp orchestrator.SessionPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List sessions failed", args...)

			return
		}
		lm.logger.Info("List sessions completed successfully", args...)
	}(time.Now())

	return lm.svc.ListSessions(ctx, offset, limit)
}

func (lm *loggingMiddleware) DeleteSession(ctx context.Context, sessionID string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Delete session failed", args...)

			return
		}
		lm.logger.Info("Delete session completed successfully", args...)
	}(time.Now())

	return lm.svc.DeleteSession(ctx, sessionID)
}

func (lm *loggingMiddleware) Submit(ctx context.Context, sessionID string, cfg experiment.Config) (resp orchestrator.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("experiment",
				slog.String("session_id", sessionID),
				slog.String("dataset", string(cfg.Dataset)),
				slog.String("model", string(cfg.Model)),
				slog.String("strategy", string(cfg.Strategy.Kind)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Submit experiment failed", args...)

			return
		}
		lm.logger.Info("Submit experiment completed successfully", args...)
	}(time.Now())

	return lm.svc.Submit(ctx, sessionID, cfg)
}

func (lm *loggingMiddleware) AcknowledgeReflection(ctx context.Context, sessionID string) (resp orchestrator.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Acknowledge reflection failed", args...)

			return
		}
		lm.logger.Info("Acknowledge reflection completed successfully", args...)
	}(time.Now())

	return lm.svc.AcknowledgeReflection(ctx, sessionID)
}

func (lm *loggingMiddleware) DeferReflection(ctx context.Context, sessionID string) (resp orchestrator.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Defer reflection failed", args...)

			return
		}
		lm.logger.Info("Defer reflection completed successfully", args...)
	}(time.Now())

	return lm.svc.DeferReflection(ctx, sessionID)
}

func (lm *loggingMiddleware) ListDatasets(ctx context.Context) (resp []catalog.Dataset, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List datasets failed", args...)

			return
		}
		lm.logger.Info("List datasets completed successfully", args...)
	}(time.Now())

	return lm.svc.ListDatasets(ctx)
}

func (lm *loggingMiddleware) ListModels(ctx context.Context) (resp []catalog.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List models failed", args...)

			return
		}
		lm.logger.Info("List models completed successfully", args...)
	}(time.Now())

	return lm.svc.ListModels(ctx)
}

func (lm *loggingMiddleware) ListAggregationMethods(ctx context.Context) (resp []aggregation.Method, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List aggregation methods failed", args...)

			return
		}
		lm.logger.Info("List aggregation methods completed successfully", args...)
	}(time.Now())

	return lm.svc.ListAggregationMethods(ctx)
}
