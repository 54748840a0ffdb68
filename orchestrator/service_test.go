package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/orchestrator"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
	"github.com/privlens/privlens/pkg/mqtt/mocks"
)

type mockCall struct {
	res experiment.Result
	err error
}

// mockEvaluator records call order and can hold calls until released so
// tests can observe in-flight phases.
type mockEvaluator struct {
	mu      sync.Mutex
	calls   []experiment.RunKind
	replies map[experiment.RunKind]mockCall
	release chan struct{}
}

func newMockEvaluator() *mockEvaluator {
	return &mockEvaluator{
		replies: make(map[experiment.RunKind]mockCall),
	}
}

func (m *mockEvaluator) reply(kind experiment.RunKind, res experiment.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replies[kind] = mockCall{res: res, err: err}
}

func (m *mockEvaluator) Evaluate(_ context.Context, _ experiment.Config, kind experiment.RunKind) (experiment.Result, error) {
	m.mu.Lock()
	gate := m.release
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, kind)
	reply := m.replies[kind]

	return reply.res, reply.err
}

func (m *mockEvaluator) Health(_ context.Context) error {
	return nil
}

func (m *mockEvaluator) callOrder() []experiment.RunKind {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]experiment.RunKind, len(m.calls))
	copy(out, m.calls)

	return out
}

func newTestService(eval *mockEvaluator, cooldown time.Duration) orchestrator.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubsub := new(mocks.PubSub)
	pubsub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return orchestrator.NewService(eval, orchestrator.NewReflectionGate(cooldown), pubsub, "orchestrator", logger)
}

func newSession(t *testing.T, svc orchestrator.Service) orchestrator.Session {
	t.Helper()

	sess, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEmpty(t, sess.Name)
	require.Equal(t, experiment.Idle, sess.Phase)

	return sess
}

func waitPhase(t *testing.T, svc orchestrator.Service, id string, want experiment.Phase) orchestrator.Session {
	t.Helper()

	var sess orchestrator.Session
	require.Eventually(t, func() bool {
		var err error
		sess, err = svc.GetSession(context.Background(), id)

		return err == nil && sess.Phase == want
	}, time.Second, 5*time.Millisecond, "session never reached phase %s", want)

	return sess
}

func dpConfig(budget float64) experiment.Config {
	return experiment.Config{
		Dataset: experiment.DatasetDiabetes,
		Model:   experiment.ModelNeuralNetwork,
		Strategy: experiment.Strategy{
			Kind:   experiment.StrategyDifferentialPrivacy,
			Budget: budget,
		},
	}
}

func flConfig(method string) experiment.Config {
	return experiment.Config{
		Dataset: experiment.DatasetAdultIncome,
		Model:   experiment.ModelLogisticRegression,
		Strategy: experiment.Strategy{
			Kind:              experiment.StrategyFederated,
			AggregationMethod: method,
		},
	}
}

func plainConfig() experiment.Config {
	return experiment.Config{
		Dataset:  experiment.DatasetDiabetes,
		Model:    experiment.ModelLogisticRegression,
		Strategy: experiment.Strategy{Kind: experiment.StrategyNone},
	}
}

func TestSubmit_NoPrivacyMakesOneCall(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 79.1, SampleCount: 900}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Complete)
	require.NotNil(t, got.Comparison.Baseline)
	assert.InDelta(t, 79.1, got.Comparison.Baseline.Accuracy, 1e-6)
	assert.Nil(t, got.Comparison.Protected)
	assert.Equal(t, []experiment.RunKind{experiment.RunBaseline}, eval.callOrder())

	_, ok := got.Comparison.AccuracyLoss()
	assert.False(t, ok)
}

func TestSubmit_DPRunsBaselineFirst(t *testing.T) {
	t.Parallel()

	eps := 1.0
	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 86.5}, nil)
	eval.reply(experiment.RunProtected, experiment.Result{Accuracy: 84.0, PrivacyBudget: &eps}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, dpConfig(1.0))
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.AwaitingReflection)
	assert.Equal(t, []experiment.RunKind{experiment.RunBaseline, experiment.RunProtected}, eval.callOrder())

	loss, ok := got.Comparison.AccuracyLoss()
	require.True(t, ok)
	assert.InDelta(t, 2.5, loss, 1e-6)

	require.NotNil(t, got.Reflection)
	assert.InDelta(t, 2.5, got.Reflection.AccuracyLoss, 1e-6)
	assert.InDelta(t, 1.0, got.Reflection.PrivacyBudget, 1e-6)
	assert.False(t, got.LastPromptAt.IsZero())
}

func TestSubmit_DPProtectedFailureKeepsBaseline(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 86.5}, nil)
	eval.reply(experiment.RunProtected, experiment.Result{}, errors.New("DP model not found for epsilon 1.0"))
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, dpConfig(1.0))
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Errored)
	require.NotNil(t, got.Comparison.Baseline)
	assert.Nil(t, got.Comparison.Protected)
	assert.Contains(t, got.Failure, "DP model not found")
	assert.Nil(t, got.Reflection)
}

func TestSubmit_FederatedPartialFailure(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{}, errors.New("baseline worker crashed"))
	eval.reply(experiment.RunProtected, experiment.Result{Accuracy: 82.3, AggregationMethod: "scaffold"}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, flConfig("scaffold"))
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Errored)
	assert.Nil(t, got.Comparison.Baseline)
	require.NotNil(t, got.Comparison.Protected)
	assert.InDelta(t, 82.3, got.Comparison.Protected.Accuracy, 1e-6)
	assert.Contains(t, got.Failure, "baseline worker crashed")

	_, ok := got.Comparison.AccuracyLoss()
	assert.False(t, ok)
}

func TestSubmit_FederatedNeverPrompts(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 85.0}, nil)
	eval.reply(experiment.RunProtected, experiment.Result{Accuracy: 83.0, AggregationMethod: "fedavg"}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, flConfig("fedavg"))
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Complete)
	assert.Nil(t, got.Reflection)
	assert.True(t, got.LastPromptAt.IsZero())
}

func TestSubmit_RejectsOverlappingRun(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 79.1}, nil)
	eval.release = make(chan struct{})
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), sess.ID, plainConfig())
	require.ErrorIs(t, err, pkgerrors.ErrRunInProgress)

	close(eval.release)
	waitPhase(t, svc, sess.ID, experiment.Complete)

	_, err = svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)
}

func TestSubmit_ConcurrentSubmitsAdmitOne(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 79.1}, nil)
	eval.release = make(chan struct{})
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	const submitters = 16

	var (
		start    = make(chan struct{})
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := svc.Submit(context.Background(), sess.ID, plainConfig())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, pkgerrors.ErrRunInProgress):
				rejected++
			default:
				t.Errorf("unexpected submit error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, submitters-1, rejected)

	close(eval.release)
	got := waitPhase(t, svc, sess.ID, experiment.Complete)
	assert.Equal(t, uint64(1), got.Epoch)
	assert.Equal(t, []experiment.RunKind{experiment.RunBaseline}, eval.callOrder())
}

func TestSubmit_ErroredSessionAcceptsResubmit(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{}, errors.New("service unavailable"))
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)
	waitPhase(t, svc, sess.ID, experiment.Errored)

	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 79.1}, nil)
	_, err = svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Complete)
	assert.Empty(t, got.Failure)
	assert.Equal(t, uint64(2), got.Epoch)
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMockEvaluator(), time.Hour)
	sess := newSession(t, svc)

	cases := []struct {
		desc string
		cfg  experiment.Config
		err  error
	}{
		{
			desc: "unknown dataset",
			cfg: experiment.Config{
				Dataset:  "mnist",
				Model:    experiment.ModelNeuralNetwork,
				Strategy: experiment.Strategy{Kind: experiment.StrategyNone},
			},
			err: pkgerrors.ErrInvalidData,
		},
		{
			desc: "unknown model",
			cfg: experiment.Config{
				Dataset:  experiment.DatasetDiabetes,
				Model:    "transformer",
				Strategy: experiment.Strategy{Kind: experiment.StrategyNone},
			},
			err: pkgerrors.ErrInvalidData,
		},
		{
			desc: "unknown aggregation method",
			cfg:  flConfig("krum"),
			err:  pkgerrors.ErrUnknownAggregation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), sess.ID, tc.cfg)
			require.ErrorIs(t, err, tc.err)
		})
	}

	_, err := svc.Submit(context.Background(), sess.ID, experiment.Config{
		Dataset: experiment.DatasetDiabetes,
		Model:   experiment.ModelNeuralNetwork,
		Strategy: experiment.Strategy{
			Kind: experiment.StrategyDifferentialPrivacy,
		},
	})
	require.Error(t, err, "differential privacy without a budget must be rejected")

	_, err = svc.Submit(context.Background(), "no-such-session", plainConfig())
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestReflection_AckReturnsToIdle(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 86.5}, nil)
	eval.reply(experiment.RunProtected, experiment.Result{Accuracy: 84.0}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, dpConfig(1.0))
	require.NoError(t, err)
	waitPhase(t, svc, sess.ID, experiment.AwaitingReflection)

	got, err := svc.AcknowledgeReflection(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, experiment.Idle, got.Phase)
	assert.Nil(t, got.Reflection)
	assert.NotNil(t, got.Comparison.Baseline)

	_, err = svc.AcknowledgeReflection(context.Background(), sess.ID)
	require.ErrorIs(t, err, pkgerrors.ErrNoReflection)
}

func TestReflection_CooldownSuppressesSecondPrompt(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 86.5}, nil)
	eval.reply(experiment.RunProtected, experiment.Result{Accuracy: 84.0}, nil)
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, dpConfig(1.0))
	require.NoError(t, err)
	waitPhase(t, svc, sess.ID, experiment.AwaitingReflection)

	_, err = svc.DeferReflection(context.Background(), sess.ID)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), sess.ID, dpConfig(3.0))
	require.NoError(t, err)

	got := waitPhase(t, svc, sess.ID, experiment.Complete)
	assert.Nil(t, got.Reflection)
	require.NotNil(t, got.Comparison.Protected)
}

func TestDeleteSession_MidRunResultDropped(t *testing.T) {
	t.Parallel()

	eval := newMockEvaluator()
	eval.reply(experiment.RunBaseline, experiment.Result{Accuracy: 79.1}, nil)
	eval.release = make(chan struct{})
	svc := newTestService(eval, time.Hour)
	sess := newSession(t, svc)

	_, err := svc.Submit(context.Background(), sess.ID, plainConfig())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), sess.ID))
	close(eval.release)

	require.Eventually(t, func() bool {
		return len(eval.callOrder()) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = svc.GetSession(context.Background(), sess.ID)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestListSessions_Paging(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMockEvaluator(), time.Hour)
	for i := 0; i < 5; i++ {
		_, err := svc.CreateSession(context.Background(), "")
		require.NoError(t, err)
	}

	page, err := svc.ListSessions(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), page.Total)
	assert.Len(t, page.Sessions, 2)

	page, err = svc.ListSessions(context.Background(), 4, 10)
	require.NoError(t, err)
	assert.Len(t, page.Sessions, 1)

	page, err = svc.ListSessions(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Sessions)
}

func TestCatalogListings(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMockEvaluator(), time.Hour)

	datasets, err := svc.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Len(t, datasets, 2)

	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 2)

	methods, err := svc.ListAggregationMethods(context.Background())
	require.NoError(t, err)
	assert.Len(t, methods, 5)
}
