package evaluator

import (
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/pkg/aggregation"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
)

// Frontend model identifiers translated to the evaluation service's keys.
var modelTypes = map[experiment.Model]string{
	experiment.ModelNeuralNetwork:      "fnn",
	experiment.ModelLogisticRegression: "lr",
}

type experimentRequest struct {
	Dataset           string   `json:"dataset"`
	ModelType         string   `json:"model_type"`
	DPEnabled         bool     `json:"dp_enabled"`
	Epsilon           *float64 `json:"epsilon,omitempty"`
	FLEnabled         bool     `json:"fl_enabled,omitempty"`
	AggregationMethod string   `json:"aggregation_method,omitempty"`
}

func newExperimentRequest(cfg experiment.Config, kind experiment.RunKind) (experimentRequest, error) {
	req := experimentRequest{
		Dataset:   string(cfg.Dataset),
		ModelType: modelType(cfg.Model),
	}

	// A baseline run is always strategy-free.
	if kind == experiment.RunBaseline {
		return req, nil
	}

	switch cfg.Strategy.Kind {
	case experiment.StrategyDifferentialPrivacy:
		req.DPEnabled = true
		budget := cfg.Strategy.Budget
		req.Epsilon = &budget
	case experiment.StrategyFederated:
		serviceID, err := aggregation.ToServiceID(cfg.Strategy.AggregationMethod)
		if err != nil {
			return experimentRequest{}, err
		}
		req.FLEnabled = true
		req.AggregationMethod = serviceID
	default:
		return experimentRequest{}, pkgerrors.ErrInvalidData
	}

	return req, nil
}

func modelType(m experiment.Model) string {
	if mt, ok := modelTypes[m]; ok {
		return mt
	}

	return string(m)
}

// experimentResponse mirrors the evaluation service's reply. Every field is
// optional; which ones are present depends on the run kind, so the typed
// constructors below are the only readers.
type experimentResponse struct {
	BaselineAccuracy  *float64 `json:"baseline_accuracy,omitempty"`
	PrivateAccuracy   *float64 `json:"private_accuracy,omitempty"`
	AccuracyLoss      *float64 `json:"accuracy_loss,omitempty"`
	F1Score           *float64 `json:"f1_score,omitempty"`
	Precision         *float64 `json:"precision,omitempty"`
	Recall            *float64 `json:"recall,omitempty"`
	Epsilon           *float64 `json:"epsilon,omitempty"`
	SamplesEvaluated  *int     `json:"samples_evaluated,omitempty"`
	ModelUsed         *string  `json:"model_used,omitempty"`
	Accuracy          *float64 `json:"accuracy,omitempty"`
	AggregationMethod *string  `json:"aggregation_method,omitempty"`
}

func (r experimentResponse) baselineResult() experiment.Result {
	return experiment.Result{
		Accuracy:    firstOf(r.BaselineAccuracy, r.Accuracy),
		F1:          r.F1Score,
		Precision:   r.Precision,
		Recall:      r.Recall,
		SampleCount: intOrZero(r.SamplesEvaluated),
		ModelLabel:  stringOrEmpty(r.ModelUsed),
	}
}

func (r experimentResponse) protectedResult(cfg experiment.Config) (experiment.Result, error) {
	res := experiment.Result{
		Accuracy:    firstOf(r.PrivateAccuracy, r.Accuracy),
		F1:          r.F1Score,
		Precision:   r.Precision,
		Recall:      r.Recall,
		SampleCount: intOrZero(r.SamplesEvaluated),
		ModelLabel:  stringOrEmpty(r.ModelUsed),
	}

	switch cfg.Strategy.Kind {
	case experiment.StrategyDifferentialPrivacy:
		// The realized budget wins; a service that omits it left the
		// requested budget unchanged.
		if r.Epsilon != nil {
			res.PrivacyBudget = r.Epsilon
		} else {
			budget := cfg.Strategy.Budget
			res.PrivacyBudget = &budget
		}
	case experiment.StrategyFederated:
		if r.AggregationMethod != nil {
			res.AggregationMethod = aggregation.ToUserID(*r.AggregationMethod)
		} else {
			res.AggregationMethod = cfg.Strategy.AggregationMethod
		}
	default:
		return experiment.Result{}, pkgerrors.ErrInvalidData
	}

	return res, nil
}

func firstOf(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}

	return 0
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}

	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}
