package evaluator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privlens/privlens/experiment"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
	"github.com/privlens/privlens/pkg/evaluator"
)

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

func newServer(t *testing.T, handler http.HandlerFunc) evaluator.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return evaluator.New(evaluator.Config{URL: srv.URL})
}

func TestEvaluate_BaselineSuppressesStrategy(t *testing.T) {
	t.Parallel()

	var got map[string]any
	svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"baseline_accuracy": 86.5, "f1_score": 81.2, "samples_evaluated": 1500, "model_used": "diabetes_fnn_baseline"}`))
	})

	res, err := svc.Evaluate(context.Background(), dpConfig(1.0), experiment.RunBaseline)
	require.NoError(t, err)

	assert.Equal(t, "diabetes", got["dataset"])
	assert.Equal(t, "fnn", got["model_type"])
	assert.Equal(t, false, got["dp_enabled"])
	assert.NotContains(t, got, "epsilon")
	assert.NotContains(t, got, "aggregation_method")

	assert.InDelta(t, 86.5, res.Accuracy, 1e-6)
	assert.Equal(t, 1500, res.SampleCount)
	assert.Equal(t, "diabetes_fnn_baseline", res.ModelLabel)
	require.NotNil(t, res.F1)
	assert.InDelta(t, 81.2, *res.F1, 1e-6)
	assert.Nil(t, res.PrivacyBudget)
}

func TestEvaluate_ProtectedDP_RealizedBudgetWins(t *testing.T) {
	t.Parallel()

	svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, true, got["dp_enabled"])
		assert.InDelta(t, 1.0, got["epsilon"].(float64), 1e-6)

		_, _ = w.Write([]byte(`{"baseline_accuracy": 86.5, "private_accuracy": 84.0, "epsilon": 3.0}`))
	})

	res, err := svc.Evaluate(context.Background(), dpConfig(1.0), experiment.RunProtected)
	require.NoError(t, err)
	assert.InDelta(t, 84.0, res.Accuracy, 1e-6)
	require.NotNil(t, res.PrivacyBudget)
	assert.InDelta(t, 3.0, *res.PrivacyBudget, 1e-6)
}

func TestEvaluate_ProtectedDP_RequestedBudgetFallback(t *testing.T) {
	t.Parallel()

	svc := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"private_accuracy": 84.0}`))
	})

	res, err := svc.Evaluate(context.Background(), dpConfig(0.5), experiment.RunProtected)
	require.NoError(t, err)
	require.NotNil(t, res.PrivacyBudget)
	assert.InDelta(t, 0.5, *res.PrivacyBudget, 1e-6)
}

func TestEvaluate_FederatedTranslatesAggregation(t *testing.T) {
	t.Parallel()

	cfg := experiment.Config{
		Dataset: experiment.DatasetAdultIncome,
		Model:   experiment.ModelLogisticRegression,
		Strategy: experiment.Strategy{
			Kind:              experiment.StrategyFederated,
			AggregationMethod: "scaffold",
		},
	}

	svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "SCAFFOLD", got["aggregation_method"])
		assert.Equal(t, true, got["fl_enabled"])

		_, _ = w.Write([]byte(`{"private_accuracy": 82.3, "aggregation_method": "SCAFFOLD"}`))
	})

	res, err := svc.Evaluate(context.Background(), cfg, experiment.RunProtected)
	require.NoError(t, err)
	assert.Equal(t, "scaffold", res.AggregationMethod)
	assert.Nil(t, res.PrivacyBudget)
}

func TestEvaluate_FederatedUnknownMethod(t *testing.T) {
	t.Parallel()

	cfg := experiment.Config{
		Dataset: experiment.DatasetDiabetes,
		Model:   experiment.ModelNeuralNetwork,
		Strategy: experiment.Strategy{
			Kind:              experiment.StrategyFederated,
			AggregationMethod: "krum",
		},
	}

	svc := newServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no call should be made for an unknown aggregation method")
	})

	_, err := svc.Evaluate(context.Background(), cfg, experiment.RunProtected)
	require.ErrorIs(t, err, pkgerrors.ErrUnknownAggregation)
}

func TestEvaluate_ServiceErrorSurfacesDetail(t *testing.T) {
	t.Parallel()

	svc := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "Test data not loaded for diabetes"}`))
	})

	_, err := svc.Evaluate(context.Background(), dpConfig(1.0), experiment.RunBaseline)
	require.ErrorIs(t, err, pkgerrors.ErrEvaluation)
	assert.Contains(t, err.Error(), "Test data not loaded for diabetes")
}

func TestEvaluate_MalformedPayload(t *testing.T) {
	t.Parallel()

	svc := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"baseline_accuracy": `))
	})

	_, err := svc.Evaluate(context.Background(), dpConfig(1.0), experiment.RunBaseline)
	require.ErrorIs(t, err, pkgerrors.ErrEvaluation)
}

func TestEvaluate_EmptyResponseDoesNotCrash(t *testing.T) {
	t.Parallel()

	svc := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := svc.Evaluate(context.Background(), dpConfig(1.0), experiment.RunBaseline)
	require.NoError(t, err)
	assert.Zero(t, res.Accuracy)
	assert.Nil(t, res.F1)
	assert.Zero(t, res.SampleCount)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	healthy := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
	require.NoError(t, healthy.Health(context.Background()))

	down := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.ErrorIs(t, down.Health(context.Background()), pkgerrors.ErrEvaluation)
}
