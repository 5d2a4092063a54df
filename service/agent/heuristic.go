package agent

import (
	"context"
	"fmt"

	"github.com/claimkit/claimkit/model"
)

// DefaultAmountThreshold is the claim amount above which the heuristic agent
// flags a claim for investigation.
const DefaultAmountThreshold = 50000

// Heuristic is a deterministic local agent: it flags claims above an amount
// threshold or carrying the advisory investigation flag. It is the default
// collaborator when no remote agents are configured and the workhorse of the
// test-suite.
type Heuristic struct {
	name            string
	amountThreshold float64
}

// NewHeuristic creates a heuristic agent. A zero threshold falls back to
// DefaultAmountThreshold.
func NewHeuristic(name string, amountThreshold float64) *Heuristic {
	if amountThreshold <= 0 {
		amountThreshold = DefaultAmountThreshold
	}
	return &Heuristic{name: name, amountThreshold: amountThreshold}
}

// Name returns the agent name.
func (h *Heuristic) Name() string { return h.name }

// Evaluate applies the amount/flag heuristic.
func (h *Heuristic) Evaluate(ctx context.Context, claim *model.Claim) (*Verdict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	switch {
	case claim.Amount > h.amountThreshold:
		return &Verdict{
			Agent:      h.name,
			Suspicious: true,
			Score:      8,
			Rationale:  fmt.Sprintf("claim amount %.2f exceeds threshold %.2f", claim.Amount, h.amountThreshold),
		}, nil
	case claim.RequiresInvestigation:
		return &Verdict{
			Agent:      h.name,
			Suspicious: true,
			Score:      6,
			Rationale:  "investigation flag set at creation",
		}, nil
	default:
		return &Verdict{
			Agent:      h.name,
			Suspicious: false,
			Score:      1,
			Rationale:  "no anomalies detected",
		}, nil
	}
}
