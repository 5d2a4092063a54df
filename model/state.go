package model

// ClaimState represents a named stage in a claim's lifecycle. The values are
// part of the persistence contract - any serialisation must preserve them
// verbatim.
type ClaimState string

const (
	// StateSubmitted is the initial state of every claim.
	StateSubmitted ClaimState = "SUBMITTED"

	// StateUnderReview is where agent evaluation takes place.
	StateUnderReview ClaimState = "UNDER_REVIEW"

	// StateFraudInvestigation never appears in the static transition table;
	// it enters a claim's path only through dynamic insertion.
	StateFraudInvestigation ClaimState = "FRAUD_INVESTIGATION"

	// StateAssessment follows review (or investigation when inserted).
	StateAssessment ClaimState = "ASSESSMENT"

	// StateFinalDecision is terminal - no transition leaves it.
	StateFinalDecision ClaimState = "FINAL_DECISION"
)

// transitions is the static transition table. It is process-wide, shared by
// all claims and never mutated - per-claim routing changes are expressed as
// pending insertions owned by the state machine, not as edits to this table.
var transitions = map[ClaimState][]ClaimState{
	StateSubmitted:     {StateUnderReview},
	StateUnderReview:   {StateAssessment},
	StateAssessment:    {StateFinalDecision},
	StateFinalDecision: {},
}

// dynamicNext lists the successors of states reachable only via insertion.
// The state machine uses it to validate that an inserted state can hand the
// claim back to the requested before-state.
var dynamicNext = map[ClaimState][]ClaimState{
	StateFraudInvestigation: {StateAssessment},
}

// AllowedNext returns the statically permitted successors of state. The
// result is a copy - callers may not mutate the shared table. A terminal or
// unknown state yields an empty slice.
func AllowedNext(state ClaimState) []ClaimState {
	next, ok := transitions[state]
	if !ok {
		return nil
	}
	out := make([]ClaimState, len(next))
	copy(out, next)
	return out
}

// DynamicNext returns the successors of an insertion-only state, the states
// it hands the claim back to once entered. The result is a copy; states with
// no dynamic edges yield an empty slice.
func DynamicNext(state ClaimState) []ClaimState {
	next, ok := dynamicNext[state]
	if !ok {
		return nil
	}
	out := make([]ClaimState, len(next))
	copy(out, next)
	return out
}

// CanInsert reports whether newState may be spliced ahead of beforeState,
// i.e. whether a dynamic edge newState->beforeState exists.
func CanInsert(newState, beforeState ClaimState) bool {
	for _, next := range dynamicNext[newState] {
		if next == beforeState {
			return true
		}
	}
	return false
}

// Valid reports whether s belongs to the closed state set.
func (s ClaimState) Valid() bool {
	switch s {
	case StateSubmitted, StateUnderReview, StateFraudInvestigation,
		StateAssessment, StateFinalDecision:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s ClaimState) Terminal() bool {
	return s == StateFinalDecision
}

// States returns all states in lifecycle order.
func States() []ClaimState {
	return []ClaimState{
		StateSubmitted,
		StateUnderReview,
		StateFraudInvestigation,
		StateAssessment,
		StateFinalDecision,
	}
}
