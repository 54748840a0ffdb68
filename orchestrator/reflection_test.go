package orchestrator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/privlens/privlens/orchestrator"
)

func TestReflectionGate_FirstCompletionFires(t *testing.T) {
	t.Parallel()

	gate := orchestrator.NewReflectionGate(0)
	assert.True(t, gate.ShouldPrompt(time.Time{}, time.Now()))
}

func TestReflectionGate_Boundary(t *testing.T) {
	t.Parallel()

	gate := orchestrator.NewReflectionGate(30 * time.Second)
	last := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.False(t, gate.ShouldPrompt(last, last.Add(29*time.Second+999*time.Millisecond)))
	assert.True(t, gate.ShouldPrompt(last, last.Add(30*time.Second)))
	assert.True(t, gate.ShouldPrompt(last, last.Add(time.Minute)))
}

func TestReflectionGate_DefaultCooldown(t *testing.T) {
	t.Parallel()

	gate := orchestrator.NewReflectionGate(0)
	last := time.Now()

	assert.False(t, gate.ShouldPrompt(last, last.Add(orchestrator.DefReflectionCooldown-time.Millisecond)))
	assert.True(t, gate.ShouldPrompt(last, last.Add(orchestrator.DefReflectionCooldown)))
}
