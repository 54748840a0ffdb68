package privlens

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

type Config struct {
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Evaluator    EvaluatorConfig    `toml:"evaluator"`
	MQTT         MQTTConfig         `toml:"mqtt"`
}

type OrchestratorConfig struct {
	URL                string `toml:"url"`
	ReflectionCooldown string `toml:"reflection_cooldown"`
	EventTopic         string `toml:"event_topic"`
}

type EvaluatorConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

type MQTTConfig struct {
	Address  string `toml:"address"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	QoS      uint8  `toml:"qos"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
