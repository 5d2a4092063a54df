// Package policy provides an optional per-orchestration routing policy that
// can be attached to an evaluation via context. It is deliberately decoupled
// from the orchestrator so that using it is entirely opt-in - callers that do
// not embed a Policy in their context keep the default behaviour.
package policy

import (
	"context"
	"time"
)

// Decision modes recognised by the orchestrator.
const (
	// ModeAny triggers investigation when the static flag or any suspicious
	// verdict says yes (the default, conservative OR policy).
	ModeAny = "any"

	// ModeAll triggers investigation only when every successful verdict is
	// suspicious. The static flag still forces investigation on its own.
	ModeAll = "all"
)

// Policy represents the routing settings for one orchestration run.
//
//   - Mode controls how verdicts combine into a routing decision.
//   - AgentTimeout bounds each collaborator call; a timed-out call degrades
//     into a failed verdict, it never aborts the orchestration.
//   - Skip excludes named agents from a run regardless of Mode.
//
// A nil *Policy means "evaluate everything with defaults" and is therefore
// the zero-cost default.
type Policy struct {
	Mode         string        // any / all (default = any)
	AgentTimeout time.Duration // 0 = orchestrator default
	Skip         []string      // agent names excluded from this run
}

// Config is the declarative, serialisable form of a Policy.
type Config struct {
	Mode           string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AgentTimeoutMs int      `json:"agentTimeoutMs,omitempty" yaml:"agentTimeoutMs,omitempty"`
	Skip           []string `json:"skip,omitempty" yaml:"skip,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:           p.Mode,
		AgentTimeoutMs: int(p.AgentTimeout / time.Millisecond),
		Skip:           append([]string(nil), p.Skip...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:         c.Mode,
		AgentTimeout: time.Duration(c.AgentTimeoutMs) * time.Millisecond,
		Skip:         append([]string(nil), c.Skip...),
	}
}

// Skips reports whether the named agent is excluded from the run.
func (p *Policy) Skips(name string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Skip {
		if s == name {
			return true
		}
	}
	return false
}

// EffectiveMode resolves the decision mode, defaulting to ModeAny.
func (p *Policy) EffectiveMode() string {
	if p == nil || p.Mode == "" {
		return ModeAny
	}
	return p.Mode
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds the policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy from ctx, nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(ctxKey).(*Policy)
	return p
}
