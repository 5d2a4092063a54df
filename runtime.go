package claimkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimkit/claimkit/machine"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
	"github.com/claimkit/claimkit/service/event"
	"github.com/claimkit/claimkit/service/monitor"
	"github.com/claimkit/claimkit/service/orchestrator"
	"github.com/claimkit/claimkit/service/review"
	"github.com/claimkit/claimkit/tracing"
)

// ErrClaimNotFound is returned when the requested claim id is unknown.
var ErrClaimNotFound = errors.New("claim not found")

// CreateRequest carries the business fields of a new claim. They are
// immutable once the claim exists.
type CreateRequest struct {
	ClaimantName          string  `json:"claimantName" yaml:"claimantName"`
	Amount                float64 `json:"amount" yaml:"amount"`
	Description           string  `json:"description" yaml:"description"`
	CallLog               string  `json:"callLog,omitempty" yaml:"callLog,omitempty"`
	PhotoURL              string  `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`
	RequiresInvestigation bool    `json:"requiresInvestigation" yaml:"requiresInvestigation"`
}

// Validate mirrors the storage contract: a claim needs a claimant, a
// positive amount and a description.
func (r *CreateRequest) Validate() error {
	if r.ClaimantName == "" {
		return fmt.Errorf("claimantName is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be > 0")
	}
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// Runtime exposes the engine operations consumed by the transport layer.
type Runtime struct {
	machine      *machine.Service
	orchestrator *orchestrator.Service
	monitor      *monitor.Service
	claimDAO     dao.Service[string, model.Claim]
	events       *event.Service
	review       review.Service
}

// Create registers a new claim in the initial state and persists it.
func (r *Runtime) Create(ctx context.Context, request *CreateRequest) (*model.Claim, error) {
	if request == nil {
		return nil, fmt.Errorf("nil create request")
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	claim := model.NewClaim(request.ClaimantName, request.Amount, request.Description)
	claim.CallLog = request.CallLog
	claim.PhotoURL = request.PhotoURL
	claim.RequiresInvestigation = request.RequiresInvestigation
	if err := r.claimDAO.Save(ctx, claim); err != nil {
		return nil, err
	}
	r.publish(ctx, event.TypeClaimCreated, claim)
	return claim, nil
}

// Get returns a claim by id.
func (r *Runtime) Get(ctx context.Context, id string) (*model.Claim, error) {
	claim, err := r.claimDAO.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrClaimNotFound, id)
		}
		return nil, err
	}
	return claim, nil
}

// History returns the claim's state history in entry order.
func (r *Runtime) History(ctx context.Context, id string) ([]model.ClaimState, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return claim.History(), nil
}

// AllowedNext returns the states the claim may transition to right now.
func (r *Runtime) AllowedNext(ctx context.Context, id string) ([]model.ClaimState, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.machine.AllowedNext(claim), nil
}

// Transition moves the claim to target, persists it and fires the monitor's
// state-entry hook. The monitor may route the claim further (into an
// inserted state); every state actually entered is published on the event
// stream.
func (r *Runtime) Transition(ctx context.Context, id string, target model.ClaimState) (*model.Claim, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "runtime.Transition", "INTERNAL")
	span.WithAttributes(map[string]string{"claim.id": id, "claim.target": string(target)})
	defer func() { tracing.EndSpan(span, err) }()

	from := claim.State()
	if err = r.machine.Transition(claim, target); err != nil {
		return nil, err
	}
	r.publishStateChange(ctx, claim, from, target)

	if err = r.monitor.OnStateEntered(ctx, claim, target); err != nil {
		return nil, err
	}
	// The monitor may have advanced the claim into an inserted state.
	if current := claim.State(); current != target {
		r.publishStateChange(ctx, claim, target, current)
	}
	if err = r.claimDAO.Save(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Advance moves the claim to its resolved next state, the staged insertion
// first when one is pending.
func (r *Runtime) Advance(ctx context.Context, id string) (*model.Claim, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := r.machine.NextState(claim)
	if !ok {
		return nil, fmt.Errorf("%w: claim %v in %v", machine.ErrTerminalState, id, claim.State())
	}
	return r.Transition(ctx, id, next)
}

// Evaluate runs one orchestration round for the claim without transitioning
// it, returning the routing decision.
func (r *Runtime) Evaluate(ctx context.Context, id string) (*orchestrator.Decision, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	decision, err := r.orchestrator.Evaluate(ctx, claim)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, event.TypeEvaluated, claim)
	return decision, nil
}

// LastDecision returns the memoised orchestration decision for a claim.
func (r *Runtime) LastDecision(id string) (*orchestrator.Decision, bool) {
	return r.orchestrator.LastDecision(id)
}

// RequestReview files a human-review request for the claim, attaching the
// latest orchestration verdicts as evidence.
func (r *Runtime) RequestReview(ctx context.Context, id, reason string) (*review.Request, error) {
	claim, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	request := &review.Request{ClaimID: claim.ID, Reason: reason}
	if decision, ok := r.orchestrator.LastDecision(claim.ID); ok {
		request.Verdicts = decision.Verdicts
	}
	if err = r.review.RequestReview(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (r *Runtime) publishStateChange(ctx context.Context, claim *model.Claim, from, to model.ClaimState) {
	publisher, err := event.PublisherOf[event.StateChange](r.events)
	if err != nil {
		return
	}
	eventType := event.TypeStateChanged
	if to == model.StateFraudInvestigation {
		eventType = event.TypeStateInserted
	}
	_ = publisher.Publish(ctx, event.NewEvent(
		&event.Context{ClaimID: claim.ID, State: to, EventType: eventType},
		event.StateChange{ClaimID: claim.ID, From: from, To: to, History: claim.History()},
	))
}

func (r *Runtime) publish(ctx context.Context, eventType string, claim *model.Claim) {
	publisher, err := event.PublisherOf[event.StateChange](r.events)
	if err != nil {
		return
	}
	_ = publisher.Publish(ctx, event.NewEvent(
		&event.Context{ClaimID: claim.ID, State: claim.State(), EventType: eventType},
		event.StateChange{ClaimID: claim.ID, To: claim.State(), History: claim.History()},
	))
}
