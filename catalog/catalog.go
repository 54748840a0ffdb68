// Package catalog holds the static dataset and model metadata the
// presentation layer needs to build its selection forms. The evaluation
// service owns the actual data and weights; this is display metadata only.
package catalog

import "github.com/privlens/privlens/experiment"

type Dataset struct {
	ID          experiment.Dataset `json:"id"`
	Name        string             `json:"name"`
	InputSize   int                `json:"input_size"`
	Description string             `json:"description"`
}

type Model struct {
	ID          experiment.Model `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
}

var datasets = []Dataset{
	{
		ID:          experiment.DatasetDiabetes,
		Name:        "Diabetes Health Indicators",
		InputSize:   21,
		Description: "Binary diabetes risk classification from survey health indicators.",
	},
	{
		ID:          experiment.DatasetAdultIncome,
		Name:        "Adult Income",
		InputSize:   14,
		Description: "Census income classification (>50K vs <=50K).",
	},
}

var models = []Model{
	{
		ID:          experiment.ModelNeuralNetwork,
		Name:        "Feedforward Neural Network",
		Description: "Three hidden layers (128/64/32) with dropout.",
	},
	{
		ID:          experiment.ModelLogisticRegression,
		Name:        "Logistic Regression",
		Description: "Single linear layer baseline.",
	},
}

// Pre-trained privacy budgets available on the evaluation service. The
// service snaps a requested budget to the closest trained one.
var budgets = []float64{0.5, 1.0, 3.0, 5.0, 10.0}

func Datasets() []Dataset {
	out := make([]Dataset, len(datasets))
	copy(out, datasets)

	return out
}

func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)

	return out
}

func Budgets() []float64 {
	out := make([]float64, len(budgets))
	copy(out, budgets)

	return out
}

// LookupDataset reports whether id names a known dataset.
func LookupDataset(id experiment.Dataset) (Dataset, bool) {
	for _, d := range datasets {
		if d.ID == id {
			return d, true
		}
	}

	return Dataset{}, false
}

// LookupModel reports whether id names a known model.
func LookupModel(id experiment.Model) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}

	return Model{}, false
}
