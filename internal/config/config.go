// Package config provides unified configuration loading for meshsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jangseop-park/meshsim/internal/constants"
	"github.com/jangseop-park/meshsim/internal/segment"
)

// Config contains all meshsim configuration settings.
type Config struct {
	// Variant selects the simulated system: "cloth" or "deform".
	Variant string `json:"variant" yaml:"variant"`

	// Core contains settings for the learned core network.
	Core CoreConfig `json:"core" yaml:"core"`

	// Graph contains settings for graph construction.
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Normalizer contains settings for online feature normalization.
	Normalizer NormalizerConfig `json:"normalizer" yaml:"normalizer"`

	// Checkpoint contains settings for model persistence.
	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint"`

	// Logging contains settings for operational and step-trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// CoreConfig configures the learned core network.
type CoreConfig struct {
	// Name selects a registered core implementation.
	Name string `json:"name" yaml:"name"`

	// MessagePassingSteps is the number of processor iterations.
	MessagePassingSteps int `json:"message_passing_steps" yaml:"message_passing_steps"`

	// Aggregator selects the message aggregation: "sum", "mean", "max", or "min".
	Aggregator string `json:"aggregator" yaml:"aggregator"`
}

// GraphConfig configures graph construction.
type GraphConfig struct {
	// WorldEdgeRadius is the proximity threshold for world (contact) edges.
	// Only used by the deform variant.
	WorldEdgeRadius float64 `json:"world_edge_radius" yaml:"world_edge_radius"`

	// NodeDynamic enables the per-node mesh-edge length spread signal.
	// Only used by the deform variant.
	NodeDynamic bool `json:"node_dynamic" yaml:"node_dynamic"`
}

// NormalizerConfig configures the online normalizers.
type NormalizerConfig struct {
	// MaxAccumulations caps statistic accumulation; after this many
	// accumulated rows the statistics freeze.
	MaxAccumulations int64 `json:"max_accumulations" yaml:"max_accumulations"`

	// StdEpsilon is the lower bound applied to standard deviations.
	StdEpsilon float64 `json:"std_epsilon" yaml:"std_epsilon"`
}

// CheckpointConfig configures model persistence.
type CheckpointConfig struct {
	// Backend selects the checkpoint store: "file" (default) or "sqlite".
	Backend string `json:"backend" yaml:"backend"`

	// Dir is the directory for the file backend.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Path is the database file for the sqlite backend.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures meshsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables step tracing to steps.jsonl.
	// "trace" additionally includes full feature content.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Variant: "cloth",
		Core: CoreConfig{
			Name:                "zero",
			MessagePassingSteps: 15,
			Aggregator:          "sum",
		},
		Graph: GraphConfig{
			WorldEdgeRadius: constants.DefaultWorldEdgeRadius,
			NodeDynamic:     false,
		},
		Normalizer: NormalizerConfig{
			MaxAccumulations: constants.DefaultMaxAccumulations,
			StdEpsilon:       constants.DefaultStdEpsilon,
		},
		Checkpoint: CheckpointConfig{
			Backend: "file",
			Dir:     "checkpoints",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.meshsim/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".meshsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Variant != "cloth" && c.Variant != "deform" {
		return fmt.Errorf("invalid variant: %s (valid: cloth, deform)", c.Variant)
	}

	if c.Core.Name == "" {
		return fmt.Errorf("core name must not be empty")
	}
	if c.Core.MessagePassingSteps < 1 {
		return fmt.Errorf("message_passing_steps must be at least 1, got %d", c.Core.MessagePassingSteps)
	}
	if _, err := segment.ParseOp(c.Core.Aggregator); err != nil {
		return fmt.Errorf("invalid aggregator: %w", err)
	}

	if c.Graph.WorldEdgeRadius <= 0 {
		return fmt.Errorf("world_edge_radius must be positive, got %v", c.Graph.WorldEdgeRadius)
	}

	if c.Normalizer.MaxAccumulations < 1 {
		return fmt.Errorf("max_accumulations must be at least 1, got %d", c.Normalizer.MaxAccumulations)
	}
	if c.Normalizer.StdEpsilon <= 0 {
		return fmt.Errorf("std_epsilon must be positive, got %v", c.Normalizer.StdEpsilon)
	}

	switch c.Checkpoint.Backend {
	case "file":
		if c.Checkpoint.Dir == "" {
			return fmt.Errorf("checkpoint dir must be set for the file backend")
		}
	case "sqlite":
		if c.Checkpoint.Path == "" {
			return fmt.Errorf("checkpoint path must be set for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid checkpoint backend: %s (valid: file, sqlite)", c.Checkpoint.Backend)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MESHSIM_VARIANT"); v != "" {
		config.Variant = v
	}

	if v := os.Getenv("MESHSIM_CORE"); v != "" {
		config.Core.Name = v
	}
	if v := os.Getenv("MESHSIM_MESSAGE_PASSING_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Core.MessagePassingSteps = n
		}
	}
	if v := os.Getenv("MESHSIM_AGGREGATOR"); v != "" {
		config.Core.Aggregator = v
	}

	if v := os.Getenv("MESHSIM_WORLD_EDGE_RADIUS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Graph.WorldEdgeRadius = f
		}
	}
	if v := os.Getenv("MESHSIM_NODE_DYNAMIC"); v != "" {
		config.Graph.NodeDynamic = v == "true" || v == "1"
	}

	if v := os.Getenv("MESHSIM_MAX_ACCUMULATIONS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Normalizer.MaxAccumulations = n
		}
	}

	if v := os.Getenv("MESHSIM_CHECKPOINT_BACKEND"); v != "" {
		config.Checkpoint.Backend = v
	}
	if v := os.Getenv("MESHSIM_CHECKPOINT_DIR"); v != "" {
		config.Checkpoint.Dir = v
	}
	if v := os.Getenv("MESHSIM_CHECKPOINT_PATH"); v != "" {
		config.Checkpoint.Path = v
	}

	if v := os.Getenv("MESHSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
