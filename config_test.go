package privlens_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privlens/privlens"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "privlens.toml")
	content := `
[orchestrator]
url = "http://orchestrator.example.com:8060"
reflection_cooldown = "45s"
event_topic = "orchestrator"

[evaluator]
url = "http://evaluator.example.com:8000"
timeout = "2m"

[mqtt]
address = "tcp://localhost:1883"
username = "privlens"
qos = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := privlens.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://orchestrator.example.com:8060", cfg.Orchestrator.URL)
	assert.Equal(t, "45s", cfg.Orchestrator.ReflectionCooldown)
	assert.Equal(t, "orchestrator", cfg.Orchestrator.EventTopic)
	assert.Equal(t, "http://evaluator.example.com:8000", cfg.Evaluator.URL)
	assert.Equal(t, "2m", cfg.Evaluator.Timeout)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Address)
	assert.Equal(t, uint8(2), cfg.MQTT.QoS)
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Parallel()

	_, err := privlens.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "privlens.toml")
	require.NoError(t, os.WriteFile(path, []byte("[orchestrator\nurl ="), 0o644))

	_, err := privlens.LoadConfig(path)
	require.Error(t, err)
}
