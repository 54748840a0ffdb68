package catalog_test

import (
	"testing"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
)

func TestLookupDataset(t *testing.T) {
	t.Parallel()

	d, ok := catalog.LookupDataset(experiment.DatasetDiabetes)
	if !ok {
		t.Fatal("expected diabetes dataset to be known")
	}
	if d.InputSize != 21 {
		t.Errorf("expected input size 21, got %d", d.InputSize)
	}

	if _, ok := catalog.LookupDataset("mnist"); ok {
		t.Error("expected unknown dataset to be rejected")
	}
}

func TestLookupModel(t *testing.T) {
	t.Parallel()

	if _, ok := catalog.LookupModel(experiment.ModelLogisticRegression); !ok {
		t.Fatal("expected logistic regression model to be known")
	}

	if _, ok := catalog.LookupModel("transformer"); ok {
		t.Error("expected unknown model to be rejected")
	}
}

func TestBudgetsSorted(t *testing.T) {
	t.Parallel()

	bs := catalog.Budgets()
	if len(bs) == 0 {
		t.Fatal("expected at least one pre-trained budget")
	}
	for i := 1; i < len(bs); i++ {
		if bs[i] <= bs[i-1] {
			t.Errorf("budgets not strictly increasing at %d: %v", i, bs)
		}
	}
}
