// Package aggregation maps user-facing federated aggregation identifiers to
// the identifiers understood by the evaluation service. The table is closed:
// selectors are built from Methods, so an unknown id reaching ToServiceID is
// a contract violation, not user error.
package aggregation

import (
	"fmt"

	"github.com/privlens/privlens/pkg/errors"
)

type Method struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	Mechanism string `json:"mechanism"`
	BestFor   string `json:"best_for"`
}

var methods = []Method{
	{
		ID:        "fedavg",
		ServiceID: "FedAvg",
		Mechanism: "simple weighted averaging",
		BestFor:   "balanced data across clients",
	},
	{
		ID:        "fedprox",
		ServiceID: "FedProx",
		Mechanism: "averaging with a proximal term",
		BestFor:   "heterogeneous client data",
	},
	{
		ID:        "qffl",
		ServiceID: "q-FedAvg",
		Mechanism: "fairness reweighting",
		BestFor:   "evening out per-client performance",
	},
	{
		ID:        "scaffold",
		ServiceID: "SCAFFOLD",
		Mechanism: "control-variate drift reduction",
		BestFor:   "clients that drift from the global model",
	},
	{
		ID:        "fedadam",
		ServiceID: "FedAdam",
		Mechanism: "adaptive per-parameter rates",
		BestFor:   "faster convergence on sparse updates",
	},
}

// Methods returns the full registry in display order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)

	return out
}

// ToServiceID translates a user-facing id to the evaluation service's id.
func ToServiceID(id string) (string, error) {
	for _, m := range methods {
		if m.ID == id {
			return m.ServiceID, nil
		}
	}

	return "", fmt.Errorf("%w: %q", errors.ErrUnknownAggregation, id)
}

// ToUserID reverse-maps a service id for display. Unmapped ids are echoed
// back verbatim since the mapping is display-only.
func ToUserID(serviceID string) string {
	for _, m := range methods {
		if m.ServiceID == serviceID {
			return m.ID
		}
	}

	return serviceID
}
