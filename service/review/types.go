package review

import (
	"time"

	"github.com/claimkit/claimkit/service/agent"
)

// Event envelope published on the review queue.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"` // optional - tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated  = "review.request.created"
	TopicDecisionCreated = "review.decision.created"
)

// Outcome values recorded on the claim when a reviewer decides.
const (
	OutcomeApproved = "APPROVED"
	OutcomeRejected = "REJECTED"
)

// Request asks a human operator to resolve a fraud investigation.
type Request struct {
	ID        string                 `json:"id"`      // globally unique, primary key
	ClaimID   string                 `json:"claimId"` // refers to model.Claim.ID
	Reason    string                 `json:"reason,omitempty"`
	Verdicts  []agent.Verdict        `json:"verdicts,omitempty"` // evidence presented to the reviewer
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt *time.Time             `json:"expiresAt,omitempty"` // optional deadline
	Meta      map[string]interface{} `json:"meta,omitempty"`      // free-form: tenant, user, environment
}

// Decision records a reviewer's resolution of a request.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	ClaimID   string    `json:"claimId"`
	Approved  bool      `json:"approved"` // true = claim may proceed, false = rejected as fraudulent
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
