package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/pkg/aggregation"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
	"github.com/privlens/privlens/pkg/evaluator"
	"github.com/privlens/privlens/pkg/mqtt"
)

var namegen = namegenerator.NewGenerator()

type service struct {
	store     *sessionStore
	evaluator evaluator.Service
	gate      ReflectionGate
	pubsub    mqtt.PubSub
	baseTopic string
	logger    *slog.Logger
}

func NewService(eval evaluator.Service, gate ReflectionGate, pubsub mqtt.PubSub, baseTopic string, logger *slog.Logger) Service {
	return &service{
		store:     newSessionStore(),
		evaluator: eval,
		gate:      gate,
		pubsub:    pubsub,
		baseTopic: baseTopic,
		logger:    logger,
	}
}

func (svc *service) CreateSession(_ context.Context, name string) (Session, error) {
	if name == "" {
		name = namegen.Generate()
	}

	now := time.Now()
	sess := Session{
		ID:        uuid.NewString(),
		Name:      name,
		Phase:     experiment.Idle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.store.Create(sess); err != nil {
		return Session{}, err
	}

	return sess, nil
}

func (svc *service) GetSession(_ context.Context, sessionID string) (Session, error) {
	return svc.store.Get(sessionID)
}

func (svc *service) ListSessions(_ context.Context, offset, limit uint64) (SessionPage, error) {
	sessions, total := svc.store.List(offset, limit)

	return SessionPage{
		Offset:   offset,
		Limit:    limit,
		Total:    total,
		Sessions: sessions,
	}, nil
}

func (svc *service) DeleteSession(_ context.Context, sessionID string) error {
	return svc.store.Delete(sessionID)
}

func (svc *service) Submit(ctx context.Context, sessionID string, cfg experiment.Config) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return Session{}, err
	}
	if _, ok := catalog.LookupDataset(cfg.Dataset); !ok {
		return Session{}, fmt.Errorf("%w: dataset %q", pkgerrors.ErrInvalidData, cfg.Dataset)
	}
	if _, ok := catalog.LookupModel(cfg.Model); !ok {
		return Session{}, fmt.Errorf("%w: model %q", pkgerrors.ErrInvalidData, cfg.Model)
	}
	if cfg.Strategy.Kind == experiment.StrategyFederated {
		if _, err := aggregation.ToServiceID(cfg.Strategy.AggregationMethod); err != nil {
			return Session{}, err
		}
	}

	sess, err := svc.store.BeginRun(sessionID, cfg, time.Now())
	if err != nil {
		return Session{}, err
	}
	svc.publishPhase(ctx, sess)

	// The run cycle outlives the submit request.
	go svc.runCycle(context.WithoutCancel(ctx), sess.ID, sess.Epoch, cfg)

	return sess, nil
}

func (svc *service) AcknowledgeReflection(ctx context.Context, sessionID string) (Session, error) {
	return svc.resolveReflection(ctx, sessionID)
}

func (svc *service) DeferReflection(ctx context.Context, sessionID string) (Session, error) {
	return svc.resolveReflection(ctx, sessionID)
}

func (svc *service) resolveReflection(ctx context.Context, sessionID string) (Session, error) {
	sess, err := svc.store.Get(sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.Phase != experiment.AwaitingReflection {
		return Session{}, pkgerrors.ErrNoReflection
	}

	sess.Phase = experiment.Idle
	sess.Reflection = nil
	sess.UpdatedAt = time.Now()

	if err := svc.store.Update(sess); err != nil {
		return Session{}, err
	}
	svc.publishPhase(ctx, sess)

	return sess, nil
}

func (svc *service) ListDatasets(_ context.Context) ([]catalog.Dataset, error) {
	return catalog.Datasets(), nil
}

func (svc *service) ListModels(_ context.Context) ([]catalog.Model, error) {
	return catalog.Models(), nil
}

func (svc *service) ListAggregationMethods(_ context.Context) ([]aggregation.Method, error) {
	return aggregation.Methods(), nil
}

// runCycle drives one submission to a terminal phase. Differential-privacy
// and unprotected cycles run sequentially so the baseline lands before the
// protected call starts; federated cycles issue both calls concurrently
// because the coordinator evaluates them independently.
func (svc *service) runCycle(ctx context.Context, sessionID string, epoch uint64, cfg experiment.Config) {
	if cfg.Strategy.Kind == experiment.StrategyFederated {
		svc.runFederated(ctx, sessionID, epoch, cfg)

		return
	}

	baseline, err := svc.evaluator.Evaluate(ctx, cfg, experiment.RunBaseline)
	if err != nil {
		svc.failRun(ctx, sessionID, epoch, err)

		return
	}

	protected := cfg.Strategy.Kind != experiment.StrategyNone
	if !svc.applyBaseline(ctx, sessionID, epoch, baseline, protected) || !protected {
		return
	}

	result, err := svc.evaluator.Evaluate(ctx, cfg, experiment.RunProtected)
	if err != nil {
		svc.failRun(ctx, sessionID, epoch, err)

		return
	}

	svc.applyProtected(ctx, sessionID, epoch, result, cfg.Strategy.Kind)
}

func (svc *service) runFederated(ctx context.Context, sessionID string, epoch uint64, cfg experiment.Config) {
	var (
		baseline, protected callResult
		g                   errgroup.Group
	)

	g.Go(func() error {
		baseline.value, baseline.err = svc.evaluator.Evaluate(ctx, cfg, experiment.RunBaseline)

		return nil
	})
	g.Go(func() error {
		protected.value, protected.err = svc.evaluator.Evaluate(ctx, cfg, experiment.RunProtected)

		return nil
	})
	_ = g.Wait()

	sess, ok := svc.current(sessionID, epoch)
	if !ok {
		return
	}

	if baseline.err == nil {
		sess.Comparison.Baseline = &baseline.value
	}
	if protected.err == nil {
		sess.Comparison.Protected = &protected.value
	}

	switch {
	case baseline.err != nil:
		sess.Phase = experiment.Errored
		sess.Failure = baseline.err.Error()
	case protected.err != nil:
		sess.Phase = experiment.Errored
		sess.Failure = protected.err.Error()
	default:
		sess.Phase = experiment.Complete
	}
	sess.UpdatedAt = time.Now()

	svc.commit(ctx, sess)
}

type callResult struct {
	value experiment.Result
	err   error
}

func (svc *service) applyBaseline(ctx context.Context, sessionID string, epoch uint64, res experiment.Result, protectedFollows bool) bool {
	sess, ok := svc.current(sessionID, epoch)
	if !ok {
		return false
	}

	sess.Comparison.Baseline = &res
	if protectedFollows {
		sess.Phase = experiment.RunningProtected
	} else {
		sess.Phase = experiment.Complete
	}
	sess.UpdatedAt = time.Now()

	svc.commit(ctx, sess)

	return true
}

func (svc *service) applyProtected(ctx context.Context, sessionID string, epoch uint64, res experiment.Result, kind experiment.StrategyKind) {
	sess, ok := svc.current(sessionID, epoch)
	if !ok {
		return
	}

	now := time.Now()
	sess.Comparison.Protected = &res
	sess.Phase = experiment.Complete

	// Only differential-privacy completions steer toward the reflective
	// prompt; there the accuracy cost of the budget is the whole lesson.
	if kind == experiment.StrategyDifferentialPrivacy && svc.gate.ShouldPrompt(sess.LastPromptAt, now) {
		loss, _ := sess.Comparison.AccuracyLoss()
		budget := 0.0
		if res.PrivacyBudget != nil {
			budget = *res.PrivacyBudget
		}
		sess.Reflection = &Reflection{
			AccuracyLoss:  loss,
			PrivacyBudget: budget,
		}
		sess.LastPromptAt = now
		sess.Phase = experiment.AwaitingReflection
	}
	sess.UpdatedAt = now

	svc.commit(ctx, sess)
}

func (svc *service) failRun(ctx context.Context, sessionID string, epoch uint64, runErr error) {
	sess, ok := svc.current(sessionID, epoch)
	if !ok {
		return
	}

	sess.Phase = experiment.Errored
	sess.Failure = runErr.Error()
	sess.UpdatedAt = time.Now()

	svc.commit(ctx, sess)
}

// current fetches the session and drops results from superseded or deleted
// runs.
func (svc *service) current(sessionID string, epoch uint64) (Session, bool) {
	sess, err := svc.store.Get(sessionID)
	if err != nil || sess.Epoch != epoch {
		svc.logger.Debug("discarding stale run result",
			slog.String("session_id", sessionID),
			slog.Uint64("epoch", epoch))

		return Session{}, false
	}

	return sess, true
}

func (svc *service) commit(ctx context.Context, sess Session) {
	if err := svc.store.Update(sess); err != nil {
		svc.logger.Warn("failed to store session transition",
			slog.String("session_id", sess.ID),
			slog.Any("error", err))

		return
	}

	svc.publishPhase(ctx, sess)
}

type phaseEvent struct {
	SessionID string           `json:"session_id"`
	Phase     experiment.Phase `json:"phase"`
	Epoch     uint64           `json:"epoch"`
	Failure   string           `json:"failure,omitempty"`
}

func (svc *service) publishPhase(ctx context.Context, sess Session) {
	if svc.pubsub == nil {
		return
	}

	topic := fmt.Sprintf("%s/sessions/%s/phase", svc.baseTopic, sess.ID)
	event := phaseEvent{
		SessionID: sess.ID,
		Phase:     sess.Phase,
		Epoch:     sess.Epoch,
		Failure:   sess.Failure,
	}

	if err := svc.pubsub.Publish(ctx, topic, event); err != nil {
		svc.logger.Warn("failed to publish phase event",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
}
