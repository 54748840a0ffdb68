package orchestrator

import "time"

// DefReflectionCooldown is the minimum gap between reflective prompts in one
// session. Back-to-back protected runs inside the window complete silently.
const DefReflectionCooldown = 30 * time.Second

// ReflectionGate decides whether a finished differential-privacy run should
// steer the user toward the reflective prompt.
type ReflectionGate struct {
	cooldown time.Duration
}

func NewReflectionGate(cooldown time.Duration) ReflectionGate {
	if cooldown <= 0 {
		cooldown = DefReflectionCooldown
	}

	return ReflectionGate{cooldown: cooldown}
}

// ShouldPrompt fires on the first completion ever and whenever at least the
// cooldown has elapsed since the previous prompt. Exactly at the boundary it
// fires.
func (g ReflectionGate) ShouldPrompt(lastPromptAt, now time.Time) bool {
	if lastPromptAt.IsZero() {
		return true
	}

	return now.Sub(lastPromptAt) >= g.cooldown
}
