package orchestrator

import (
	"context"
	"time"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/experiment"
	"github.com/privlens/privlens/pkg/aggregation"
)

// Session is one user's comparison workspace. It owns the state machine for
// the current run cycle, the comparison aggregate, and the reflection-gate
// timestamp. Epoch counts submissions; results carrying a stale epoch are
// discarded when they arrive.
type Session struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Phase        experiment.Phase      `json:"phase"`
	Epoch        uint64                `json:"epoch"`
	Config       *experiment.Config    `json:"config,omitempty"`
	Comparison   experiment.Comparison `json:"comparison"`
	Failure      string                `json:"failure,omitempty"`
	Reflection   *Reflection           `json:"reflection,omitempty"`
	LastPromptAt time.Time             `json:"last_prompt_at,omitzero"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Reflection carries the figures the reflective prompt displays.
type Reflection struct {
	AccuracyLoss  float64 `json:"accuracy_loss"`
	PrivacyBudget float64 `json:"privacy_budget"`
}

type SessionPage struct {
	Offset   uint64    `json:"offset"`
	Limit    uint64    `json:"limit"`
	Total    uint64    `json:"total"`
	Sessions []Session `json:"sessions"`
}

type Service interface {
	CreateSession(ctx context.Context, name string) (Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	ListSessions(ctx context.Context, offset, limit uint64) (SessionPage, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Submit starts a new run cycle for the session: a baseline call
	// followed by a protected call when the strategy asks for protection.
	// Rejected while a cycle is in flight.
	Submit(ctx context.Context, sessionID string, cfg experiment.Config) (Session, error)

	AcknowledgeReflection(ctx context.Context, sessionID string) (Session, error)
	DeferReflection(ctx context.Context, sessionID string) (Session, error)

	ListDatasets(ctx context.Context) ([]catalog.Dataset, error)
	ListModels(ctx context.Context) ([]catalog.Model, error)
	ListAggregationMethods(ctx context.Context) ([]aggregation.Method, error)
}
