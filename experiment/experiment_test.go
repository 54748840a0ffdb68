package experiment

import (
	"encoding/json"
	"testing"
)

func TestStrategyValidate(t *testing.T) {
	cases := []struct {
		desc    string
		s       Strategy
		wantErr bool
	}{
		{"none", Strategy{Kind: StrategyNone}, false},
		{"none with budget", Strategy{Kind: StrategyNone, Budget: 1.0}, true},
		{"none with method", Strategy{Kind: StrategyNone, AggregationMethod: "fedavg"}, true},
		{"dp", Strategy{Kind: StrategyDifferentialPrivacy, Budget: 1.0}, false},
		{"dp without budget", Strategy{Kind: StrategyDifferentialPrivacy}, true},
		{"dp negative budget", Strategy{Kind: StrategyDifferentialPrivacy, Budget: -1.0}, true},
		{"dp with method", Strategy{Kind: StrategyDifferentialPrivacy, Budget: 1.0, AggregationMethod: "fedavg"}, true},
		{"federated", Strategy{Kind: StrategyFederated, AggregationMethod: "fedavg"}, false},
		{"federated without method", Strategy{Kind: StrategyFederated}, true},
		{"federated with budget", Strategy{Kind: StrategyFederated, AggregationMethod: "fedavg", Budget: 1.0}, true},
		{"unknown kind", Strategy{Kind: "homomorphic"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.s.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestComparisonAccuracyLoss(t *testing.T) {
	baseline := &Result{Accuracy: 86.5}
	protected := &Result{Accuracy: 84.0}

	if _, ok := (Comparison{}).AccuracyLoss(); ok {
		t.Error("loss should be undefined with no results")
	}
	if _, ok := (Comparison{Baseline: baseline}).AccuracyLoss(); ok {
		t.Error("loss should be undefined without a protected result")
	}
	if _, ok := (Comparison{Protected: protected}).AccuracyLoss(); ok {
		t.Error("loss should be undefined without a baseline result")
	}

	loss, ok := (Comparison{Baseline: baseline, Protected: protected}).AccuracyLoss()
	if !ok {
		t.Fatal("loss should be defined with both results")
	}
	if loss != 2.5 {
		t.Errorf("loss = %v, want 2.5", loss)
	}

	// A protected run can beat the baseline; the loss is then negative.
	loss, _ = (Comparison{Baseline: protected, Protected: baseline}).AccuracyLoss()
	if loss != -2.5 {
		t.Errorf("loss = %v, want -2.5", loss)
	}
}

func TestPhaseRoundTrip(t *testing.T) {
	phases := []Phase{Idle, RunningBaseline, RunningProtected, Complete, AwaitingReflection, Errored}

	for _, p := range phases {
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %v: %s", p, err)
		}

		var got Phase
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %s", data, err)
		}
		if got != p {
			t.Errorf("round trip %v = %v", p, got)
		}
	}

	var p Phase
	if err := json.Unmarshal([]byte(`"Paused"`), &p); err == nil {
		t.Error("unknown phase should not unmarshal")
	}
}

func TestPhaseTerminal(t *testing.T) {
	terminal := map[Phase]bool{
		Idle:               true,
		RunningBaseline:    false,
		RunningProtected:   false,
		Complete:           true,
		AwaitingReflection: true,
		Errored:            true,
	}

	for p, want := range terminal {
		if got := p.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", p, got, want)
		}
	}
}
