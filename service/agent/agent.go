package agent

import (
	"context"

	"github.com/claimkit/claimkit/model"
)

// Agent is the collaborator boundary: an external evaluator returning a
// structured verdict. The engine treats all implementations polymorphically -
// any collaborator producing a Verdict can plug into the orchestrator without
// touching it.
type Agent interface {
	// Name identifies the agent in verdicts and audit entries.
	Name() string

	// Evaluate inspects the claim and returns a verdict. Implementations must
	// honour ctx cancellation; the orchestrator bounds each call with a
	// per-agent timeout.
	Evaluate(ctx context.Context, claim *model.Claim) (*Verdict, error)
}

// Verdict is a collaborator-produced assessment of one claim.
type Verdict struct {
	// Agent is the name of the producing collaborator.
	Agent string `json:"agent"`

	// Suspicious flags the claim for fraud investigation.
	Suspicious bool `json:"suspicious"`

	// Score grades the suspicion on a 0 (clean) to 10 (fabricated) scale.
	Score float64 `json:"score"`

	// Rationale is the collaborator's free-text reasoning.
	Rationale string `json:"rationale,omitempty"`

	// Err carries the failure reason when the collaborator call failed or
	// timed out. A degraded verdict is never suspicious and never forces
	// investigation on its own.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the verdict is a degraded placeholder for an
// unavailable collaborator.
func (v *Verdict) Failed() bool {
	return v != nil && v.Err != ""
}

// Degraded builds the placeholder verdict recorded when an agent call fails.
func Degraded(name string, err error) *Verdict {
	rationale := "agent unavailable"
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	return &Verdict{
		Agent:      name,
		Suspicious: false,
		Score:      0,
		Rationale:  rationale,
		Err:        errText,
	}
}
