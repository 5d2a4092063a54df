package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/claimkit/claimkit/machine"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/orchestrator"
)

// Handler reacts to a claim entering a state.
type Handler func(ctx context.Context, claim *model.Claim) error

// Service is the event-reaction glue between state entry and orchestration.
// It owns the only code path allowed to call InsertState - external callers
// may only request movement to a state the machine currently allows.
type Service struct {
	machine      *machine.Service
	orchestrator *orchestrator.Service

	mu       sync.RWMutex
	handlers map[model.ClaimState][]Handler
}

// Option customises the monitor.
type Option func(*Service)

// WithHandler registers an additional handler fired when claims enter state.
func WithHandler(state model.ClaimState, handler Handler) Option {
	return func(s *Service) {
		s.handlers[state] = append(s.handlers[state], handler)
	}
}

// New creates a monitor wired to the state machine and orchestrator. The
// default UNDER_REVIEW handler triggers agent evaluation and routes the
// claim into fraud investigation when warranted.
func New(stateMachine *machine.Service, orchestratorService *orchestrator.Service, options ...Option) *Service {
	ret := &Service{
		machine:      stateMachine,
		orchestrator: orchestratorService,
		handlers:     make(map[model.ClaimState][]Handler),
	}
	ret.RegisterHandler(model.StateUnderReview, ret.onUnderReview)
	for _, option := range options {
		option(ret)
	}
	return ret
}

// RegisterHandler adds a handler fired when claims enter state.
func (s *Service) RegisterHandler(state model.ClaimState, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[state] = append(s.handlers[state], handler)
}

// OnStateEntered fires all handlers registered for state. It is invoked by
// the layer performing the transition immediately after it succeeds.
func (s *Service) OnStateEntered(ctx context.Context, claim *model.Claim, state model.ClaimState) error {
	s.mu.RLock()
	handlers := append([]Handler(nil), s.handlers[state]...)
	s.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, claim); err != nil {
			return err
		}
	}
	return nil
}

// Advance moves the claim to its next state - the staged insertion when one
// is pending, otherwise the first static successor - and fires the entry
// handlers for the state just entered.
func (s *Service) Advance(ctx context.Context, claim *model.Claim) error {
	next, ok := s.machine.NextState(claim)
	if !ok {
		return fmt.Errorf("%w: claim %v in %v", machine.ErrTerminalState, claim.ID, claim.State())
	}
	if err := s.machine.Transition(claim, next); err != nil {
		return err
	}
	return s.OnStateEntered(ctx, claim, next)
}

// onUnderReview runs the orchestration and, when investigation is needed,
// splices FRAUD_INVESTIGATION ahead of ASSESSMENT and enters it right away.
func (s *Service) onUnderReview(ctx context.Context, claim *model.Claim) error {
	decision, err := s.orchestrator.Evaluate(ctx, claim)
	if err != nil {
		return err
	}

	for _, verdict := range decision.Verdicts {
		outcome := "clear"
		if verdict.Suspicious {
			outcome = "suspicious"
		}
		if verdict.Failed() {
			outcome = "unavailable"
			log.Printf("claim %v: agent %v unavailable: %v", claim.ID, verdict.Agent, verdict.Err)
		}
		score := verdict.Score
		claim.AddAuditEntry(verdict.Agent, outcome, verdict.Rationale, &score)
	}

	if !decision.NeedsInvestigation {
		claim.AddAuditEntry("orchestrator", "no investigation", "all verdicts clear", nil)
		return nil
	}

	claim.SetRequiresInvestigation(true)
	claim.AddAuditEntry("orchestrator", "investigation required", "routing into fraud investigation", nil)

	if err = s.machine.InsertState(claim, model.StateFraudInvestigation, model.StateAssessment); err != nil {
		return err
	}
	if err = s.machine.Transition(claim, model.StateFraudInvestigation); err != nil {
		return err
	}
	return s.OnStateEntered(ctx, claim, model.StateFraudInvestigation)
}
