package experiment

import (
	"errors"
	"fmt"
)

type Dataset string

const (
	DatasetDiabetes    Dataset = "diabetes"
	DatasetAdultIncome Dataset = "adult-income"
)

type Model string

const (
	ModelNeuralNetwork      Model = "neural-network"
	ModelLogisticRegression Model = "logistic-regression"
)

type StrategyKind string

const (
	StrategyNone                StrategyKind = "none"
	StrategyDifferentialPrivacy StrategyKind = "differential-privacy"
	StrategyFederated           StrategyKind = "federated"
)

var (
	errMissingDataset  = errors.New("dataset is required")
	errMissingModel    = errors.New("model is required")
	errBudgetRequired  = errors.New("privacy budget is required for differential privacy")
	errBudgetForbidden = errors.New("privacy budget is only valid for differential privacy")
	errMethodRequired  = errors.New("aggregation method is required for federated runs")
	errMethodForbidden = errors.New("aggregation method is only valid for federated runs")
	errUnknownStrategy = errors.New("unknown privacy strategy")
)

// Strategy describes the privacy protection applied to the protected run.
// Budget is set iff Kind is StrategyDifferentialPrivacy; AggregationMethod
// is set iff Kind is StrategyFederated.
type Strategy struct {
	Kind              StrategyKind `json:"kind"`
	Budget            float64      `json:"budget,omitempty"`
	AggregationMethod string       `json:"aggregation_method,omitempty"`
}

func (s Strategy) Validate() error {
	switch s.Kind {
	case StrategyNone:
		if s.Budget != 0 {
			return errBudgetForbidden
		}
		if s.AggregationMethod != "" {
			return errMethodForbidden
		}
	case StrategyDifferentialPrivacy:
		if s.Budget <= 0 {
			return errBudgetRequired
		}
		if s.AggregationMethod != "" {
			return errMethodForbidden
		}
	case StrategyFederated:
		if s.AggregationMethod == "" {
			return errMethodRequired
		}
		if s.Budget != 0 {
			return errBudgetForbidden
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownStrategy, s.Kind)
	}

	return nil
}

// Config is the immutable description of what to run, created on user
// submit and shared by the baseline and protected calls.
type Config struct {
	Dataset  Dataset  `json:"dataset"`
	Model    Model    `json:"model"`
	Strategy Strategy `json:"strategy"`
}

func (c Config) Validate() error {
	if c.Dataset == "" {
		return errMissingDataset
	}
	if c.Model == "" {
		return errMissingModel
	}

	return c.Strategy.Validate()
}

type RunKind string

const (
	RunBaseline  RunKind = "baseline"
	RunProtected RunKind = "protected"
)

// Result is one normalized evaluation outcome. Metric values are
// percentages in [0, 100]. Optional metrics are nil when the evaluation
// service omitted them.
type Result struct {
	Accuracy          float64  `json:"accuracy"`
	F1                *float64 `json:"f1,omitempty"`
	Precision         *float64 `json:"precision,omitempty"`
	Recall            *float64 `json:"recall,omitempty"`
	SampleCount       int      `json:"sample_count"`
	ModelLabel        string   `json:"model_label"`
	PrivacyBudget     *float64 `json:"privacy_budget,omitempty"`
	AggregationMethod string   `json:"aggregation_method,omitempty"`
}

// Comparison pairs a baseline result with a protected result. Either side
// may be missing while a run cycle is in flight or after a partial failure.
type Comparison struct {
	Baseline  *Result `json:"baseline,omitempty"`
	Protected *Result `json:"protected,omitempty"`
}

// AccuracyLoss is baseline accuracy minus protected accuracy. The second
// return value reports whether both results are present; the loss is
// undefined otherwise.
func (c Comparison) AccuracyLoss() (float64, bool) {
	if c.Baseline == nil || c.Protected == nil {
		return 0, false
	}

	return c.Baseline.Accuracy - c.Protected.Accuracy, true
}

type Phase uint8

const (
	Idle Phase = iota
	RunningBaseline
	RunningProtected
	Complete
	AwaitingReflection
	Errored
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case RunningBaseline:
		return "RunningBaseline"
	case RunningProtected:
		return "RunningProtected"
	case Complete:
		return "Complete"
	case AwaitingReflection:
		return "AwaitingReflection"
	case Errored:
		return "Errored"
	default:
		return "Unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(data []byte) error {
	switch string(data) {
	case "Idle":
		*p = Idle
	case "RunningBaseline":
		*p = RunningBaseline
	case "RunningProtected":
		*p = RunningProtected
	case "Complete":
		*p = Complete
	case "AwaitingReflection":
		*p = AwaitingReflection
	case "Errored":
		*p = Errored
	default:
		return fmt.Errorf("unknown phase %q", data)
	}

	return nil
}

// Terminal reports whether the phase accepts a new submission. A run in
// flight must not be interleaved with a second one.
func (p Phase) Terminal() bool {
	switch p {
	case Idle, Complete, AwaitingReflection, Errored:
		return true
	default:
		return false
	}
}
