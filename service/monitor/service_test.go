package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimkit/claimkit/machine"
	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/agent"
	"github.com/claimkit/claimkit/service/orchestrator"
)

type stubAgent struct {
	name       string
	suspicious bool
	score      float64
	err        error
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Evaluate(ctx context.Context, claim *model.Claim) (*agent.Verdict, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &agent.Verdict{Agent: s.name, Suspicious: s.suspicious, Score: s.score}, nil
}

func newMonitor(agents ...agent.Agent) (*Service, *machine.Service) {
	stateMachine := machine.New()
	orchestratorService := orchestrator.New(orchestrator.WithAgents(agents...))
	return New(stateMachine, orchestratorService), stateMachine
}

// A clean claim walks the static path and never enters investigation.
func TestAdvanceCleanClaim(t *testing.T) {
	svc, _ := newMonitor(&stubAgent{name: "vision", score: 1})
	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	ctx := context.Background()

	for !claim.State().Terminal() {
		require.NoError(t, svc.Advance(ctx, claim))
	}
	assert.EqualValues(t, []model.ClaimState{
		model.StateSubmitted,
		model.StateUnderReview,
		model.StateAssessment,
		model.StateFinalDecision,
	}, claim.History())
	assert.False(t, claim.RequiresInvestigation)
}

// A suspicious verdict routes the claim through investigation, then back to
// the static path.
func TestAdvanceSuspiciousClaim(t *testing.T) {
	svc, stateMachine := newMonitor(&stubAgent{name: "text", suspicious: true, score: 7})
	claim := model.NewClaim("Ada Doyle", 98000, "total loss")
	ctx := context.Background()

	require.NoError(t, svc.Advance(ctx, claim))
	// entering review triggers orchestration, which enters investigation
	assert.Equal(t, model.StateFraudInvestigation, claim.State())
	assert.True(t, claim.RequiresInvestigation)
	_, pending := stateMachine.Pending(claim.ID)
	assert.False(t, pending, "insertion slot consumed")

	require.NoError(t, svc.Advance(ctx, claim))
	assert.Equal(t, model.StateAssessment, claim.State())
	require.NoError(t, svc.Advance(ctx, claim))
	assert.Equal(t, model.StateFinalDecision, claim.State())

	assert.EqualValues(t, []model.ClaimState{
		model.StateSubmitted,
		model.StateUnderReview,
		model.StateFraudInvestigation,
		model.StateAssessment,
		model.StateFinalDecision,
	}, claim.History())
}

func TestAdvanceRecordsAuditTrail(t *testing.T) {
	svc, _ := newMonitor(
		&stubAgent{name: "vision", score: 1},
		&stubAgent{name: "text", suspicious: true, score: 8},
	)
	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	require.NoError(t, svc.Advance(context.Background(), claim))

	require.Len(t, claim.AuditLog, 3)
	assert.Equal(t, "vision", claim.AuditLog[0].AgentName)
	assert.Equal(t, "clear", claim.AuditLog[0].Decision)
	assert.Equal(t, "text", claim.AuditLog[1].AgentName)
	assert.Equal(t, "suspicious", claim.AuditLog[1].Decision)
	assert.Equal(t, "orchestrator", claim.AuditLog[2].AgentName)
	assert.Equal(t, "investigation required", claim.AuditLog[2].Decision)
}

// An unavailable agent is audited but never triggers investigation by itself.
func TestAdvanceDegradedAgent(t *testing.T) {
	svc, _ := newMonitor(&stubAgent{name: "vision", err: errors.New("connection refused")})
	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	require.NoError(t, svc.Advance(context.Background(), claim))

	assert.Equal(t, model.StateUnderReview, claim.State())
	require.NotEmpty(t, claim.AuditLog)
	assert.Equal(t, "unavailable", claim.AuditLog[0].Decision)
}

func TestAdvanceTerminalClaim(t *testing.T) {
	svc, _ := newMonitor(&stubAgent{name: "vision", score: 1})
	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	ctx := context.Background()
	for !claim.State().Terminal() {
		require.NoError(t, svc.Advance(ctx, claim))
	}
	err := svc.Advance(ctx, claim)
	assert.ErrorIs(t, err, machine.ErrTerminalState)
}

func TestRegisterHandler(t *testing.T) {
	svc, _ := newMonitor(&stubAgent{name: "vision", score: 1})
	entered := make([]model.ClaimState, 0)
	svc.RegisterHandler(model.StateAssessment, func(ctx context.Context, claim *model.Claim) error {
		entered = append(entered, claim.State())
		return nil
	})

	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	ctx := context.Background()
	require.NoError(t, svc.Advance(ctx, claim))
	require.NoError(t, svc.Advance(ctx, claim))

	assert.EqualValues(t, []model.ClaimState{model.StateAssessment}, entered)
}

func TestHandlerErrorPropagates(t *testing.T) {
	svc, _ := newMonitor(&stubAgent{name: "vision", score: 1})
	boom := errors.New("downstream refused")
	svc.RegisterHandler(model.StateUnderReview, func(ctx context.Context, claim *model.Claim) error {
		return boom
	})

	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	err := svc.Advance(context.Background(), claim)
	assert.ErrorIs(t, err, boom)
}
