package claimkit

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from JSON, YAML or environment plumbing. The zero value
// is useful - all nested fields inherit their package defaults.
type Config struct {
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Heuristic    HeuristicConfig    `json:"heuristic" yaml:"heuristic"`
}

// OrchestratorConfig bounds agent calls and decision memoisation.
type OrchestratorConfig struct {
	AgentTimeoutMs int `json:"agentTimeoutMs" yaml:"agentTimeoutMs"`
	DecisionTTLMs  int `json:"decisionTTLMs" yaml:"decisionTTLMs"`
}

// HeuristicConfig tunes the default local agent.
type HeuristicConfig struct {
	AmountThreshold float64 `json:"amountThreshold" yaml:"amountThreshold"`
}

// AgentTimeout returns the configured per-agent timeout.
func (c *OrchestratorConfig) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutMs) * time.Millisecond
}

// DecisionTTL returns how long memoised decisions stay readable.
func (c *OrchestratorConfig) DecisionTTL() time.Duration {
	return time.Duration(c.DecisionTTLMs) * time.Millisecond
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors would otherwise apply.
func DefaultConfig() *Config {
	return &Config{
		Orchestrator: OrchestratorConfig{
			AgentTimeoutMs: 30_000,
			DecisionTTLMs:  600_000,
		},
		Heuristic: HeuristicConfig{
			AmountThreshold: 50_000,
		},
	}
}

// ParseConfig decodes YAML configuration bytes on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Orchestrator.AgentTimeoutMs <= 0 {
		return fmt.Errorf("orchestrator.agentTimeoutMs must be > 0")
	}
	if c.Orchestrator.DecisionTTLMs <= 0 {
		return fmt.Errorf("orchestrator.decisionTTLMs must be > 0")
	}
	if c.Heuristic.AmountThreshold <= 0 {
		return fmt.Errorf("heuristic.amountThreshold must be > 0")
	}
	return nil
}
