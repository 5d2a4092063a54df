package event

import (
	"time"

	"github.com/claimkit/claimkit/internal/clock"
	"github.com/claimkit/claimkit/model"
)

// Context carries the claim coordinates shared by all event payloads.
type Context struct {
	ClaimID     string           `json:"claimID"`
	State       model.ClaimState `json:"state"`
	EventType   string           `json:"eventType"`
	TimeTakenMs int              `json:"timeTakenMs,omitempty"`
}

// Event is the generic envelope published after engine activity.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent wraps data into an envelope.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Event types emitted by the engine.
const (
	TypeClaimCreated  = "claim.created"
	TypeStateChanged  = "claim.stateChanged"
	TypeStateInserted = "claim.stateInserted"
	TypeEvaluated     = "claim.evaluated"
)

// StateChange is the payload published after every successful transition so
// external monitors and dashboards can subscribe instead of polling.
type StateChange struct {
	ClaimID string             `json:"claimID"`
	From    model.ClaimState   `json:"from,omitempty"`
	To      model.ClaimState   `json:"to"`
	History []model.ClaimState `json:"history"`
}
