package orchestrator

import "errors"

var (
	// ErrOrchestrationInProgress is returned when an evaluation is requested
	// for a claim that already has one in flight. Interleaving two runs would
	// race on the claim's single pending-insertion slot, so the second caller
	// is rejected rather than queued.
	ErrOrchestrationInProgress = errors.New("orchestrator: evaluation already in progress")

	// ErrAgentUnavailable marks a collaborator call that failed or timed out.
	// It is recovered locally into a degraded verdict and never propagated as
	// a fatal error.
	ErrAgentUnavailable = errors.New("orchestrator: agent unavailable")

	// ErrNoClaim is returned when Evaluate receives a nil claim.
	ErrNoClaim = errors.New("orchestrator: nil claim")
)
