package machine

import "errors"

// Structural errors are always surfaced to the caller - they indicate a
// workflow-definition or programming bug, never a recoverable condition.
// Sentinel variables allow detection via errors.Is instead of brittle string
// comparisons.

var (
	// ErrInvalidTransition is returned when the requested target is not
	// currently reachable, neither via the static table nor via a staged
	// insertion.
	ErrInvalidTransition = errors.New("machine: invalid transition")

	// ErrTerminalState is returned when the claim has reached its final
	// decision and no further transitions are accepted.
	ErrTerminalState = errors.New("machine: claim is terminal")

	// ErrInsertionConflict is returned when an insertion is requested while
	// another one is still pending for the same claim. The first insertion
	// wins - overwriting would hide an already-decided routing.
	ErrInsertionConflict = errors.New("machine: insertion already pending")

	// ErrInvalidInsertion is returned when the inserted state would recur in
	// the claim's path, or when no dynamic edge leads from the inserted state
	// to the requested before-state.
	ErrInvalidInsertion = errors.New("machine: invalid insertion")
)
