package model

import (
	"sync"
	"time"

	"github.com/claimkit/claimkit/internal/clock"
	"github.com/claimkit/claimkit/internal/idgen"
)

// Claim represents a claim flowing through the workflow. Business fields
// (ClaimantName, Amount, Description and the evidence attachments) are
// immutable after creation; state is mutated in place by the state machine
// under a per-claim exclusivity guarantee.
type Claim struct {
	ID           string  `json:"id" yaml:"id"`
	ClaimantName string  `json:"claimantName" yaml:"claimantName"`
	Amount       float64 `json:"amount" yaml:"amount"`
	Description  string  `json:"description" yaml:"description"`

	// Evidence consumed by agent collaborators, never by the engine itself.
	CallLog  string `json:"callLog,omitempty" yaml:"callLog,omitempty"`
	PhotoURL string `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`

	// RequiresInvestigation is advisory: it is consulted by the monitor but a
	// live orchestrator decision always takes precedence when present.
	RequiresInvestigation bool `json:"requiresInvestigation" yaml:"requiresInvestigation"`

	CurrentState ClaimState   `json:"currentState" yaml:"currentState"`
	StateHistory []ClaimState `json:"stateHistory" yaml:"stateHistory"`

	AuditLog []AuditEntry `json:"auditLog,omitempty" yaml:"auditLog,omitempty"`

	// HumanOverride records a review decision ("APPROVED"/"REJECTED") made by
	// an operator; nil until a reviewer decides.
	HumanOverride *string `json:"humanOverride,omitempty" yaml:"humanOverride,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`

	mu sync.RWMutex
}

// NewClaim creates a claim in the initial state with a seeded history.
func NewClaim(claimantName string, amount float64, description string) *Claim {
	now := clock.Now()
	return &Claim{
		ID:           idgen.New(),
		ClaimantName: claimantName,
		Amount:       amount,
		Description:  description,
		CurrentState: StateSubmitted,
		StateHistory: []ClaimState{StateSubmitted},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// State returns the current state.
func (c *Claim) State() ClaimState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CurrentState
}

// History returns a copy of the state history in entry order.
func (c *Claim) History() []ClaimState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ClaimState, len(c.StateHistory))
	copy(out, c.StateHistory)
	return out
}

// Visited reports whether the claim has ever entered state.
func (c *Claim) Visited(state ClaimState) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.StateHistory {
		if s == state {
			return true
		}
	}
	return false
}

// RecordState appends target to the history and makes it current. Validation
// belongs to the state machine - this method only maintains the history
// invariant (last element always equals CurrentState).
func (c *Claim) RecordState(target ClaimState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StateHistory = append(c.StateHistory, target)
	c.CurrentState = target
	c.UpdatedAt = clock.Now()
}

// SetRequiresInvestigation updates the advisory flag.
func (c *Claim) SetRequiresInvestigation(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RequiresInvestigation = v
	c.UpdatedAt = clock.Now()
}

// SetHumanOverride records an operator decision on the claim.
func (c *Claim) SetHumanOverride(decision string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HumanOverride = &decision
	c.UpdatedAt = clock.Now()
}

// AddAuditEntry appends an explainability record to the audit log.
func (c *Claim) AddAuditEntry(agentName, decision, reasoning string, confidence *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AuditLog = append(c.AuditLog, AuditEntry{
		AgentName:  agentName,
		Decision:   decision,
		Reasoning:  reasoning,
		Confidence: confidence,
		Timestamp:  clock.Now(),
	})
	c.UpdatedAt = clock.Now()
}

// CopyFrom updates mutable fields from src. It intentionally skips the
// mutex and the immutable business fields.
func (c *Claim) CopyFrom(src any) {
	other, ok := src.(*Claim)
	if !ok || other == nil || c == other {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RequiresInvestigation = other.RequiresInvestigation
	c.CurrentState = other.CurrentState
	c.StateHistory = other.StateHistory
	c.AuditLog = other.AuditLog
	c.HumanOverride = other.HumanOverride
	c.UpdatedAt = other.UpdatedAt
}

// Clone creates a deep copy safe for reads outside the owning store. The
// copy carries its own zero-value mutex.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := &Claim{
		ID:                    c.ID,
		ClaimantName:          c.ClaimantName,
		Amount:                c.Amount,
		Description:           c.Description,
		CallLog:               c.CallLog,
		PhotoURL:              c.PhotoURL,
		RequiresInvestigation: c.RequiresInvestigation,
		CurrentState:          c.CurrentState,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	out.StateHistory = make([]ClaimState, len(c.StateHistory))
	copy(out.StateHistory, c.StateHistory)
	if len(c.AuditLog) > 0 {
		out.AuditLog = make([]AuditEntry, len(c.AuditLog))
		copy(out.AuditLog, c.AuditLog)
	}
	if c.HumanOverride != nil {
		v := *c.HumanOverride
		out.HumanOverride = &v
	}
	return out
}
