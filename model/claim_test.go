package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claimkit/claimkit/internal/clock"
	"github.com/claimkit/claimkit/internal/idgen"
)

func TestNewClaim(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	prevNow, prevNew := clock.NowFunc, idgen.NewFunc
	clock.NowFunc = func() time.Time { return now }
	idgen.NewFunc = func() string { return "claim-1" }
	defer func() {
		clock.NowFunc = prevNow
		idgen.NewFunc = prevNew
	}()

	claim := NewClaim("Ada Doyle", 1200, "windshield crack")
	assert.Equal(t, "claim-1", claim.ID)
	assert.Equal(t, StateSubmitted, claim.State())
	assert.EqualValues(t, []ClaimState{StateSubmitted}, claim.History())
	assert.Equal(t, now, claim.CreatedAt)
	assert.Equal(t, now, claim.UpdatedAt)
}

func TestClaimRecordState(t *testing.T) {
	claim := NewClaim("Ada Doyle", 1200, "windshield crack")
	claim.RecordState(StateUnderReview)
	claim.RecordState(StateAssessment)

	assert.Equal(t, StateAssessment, claim.State())
	history := claim.History()
	assert.EqualValues(t, []ClaimState{StateSubmitted, StateUnderReview, StateAssessment}, history)
	// last history element always equals the current state
	assert.Equal(t, claim.State(), history[len(history)-1])

	assert.True(t, claim.Visited(StateUnderReview))
	assert.False(t, claim.Visited(StateFraudInvestigation))
}

func TestClaimHistoryReturnsCopy(t *testing.T) {
	claim := NewClaim("Ada Doyle", 1200, "windshield crack")
	history := claim.History()
	history[0] = StateFinalDecision
	assert.EqualValues(t, []ClaimState{StateSubmitted}, claim.History())
}

func TestClaimAuditAndOverride(t *testing.T) {
	claim := NewClaim("Ada Doyle", 98000, "total loss")
	score := 8.0
	claim.AddAuditEntry("heuristic", "suspicious", "amount exceeds threshold", &score)
	claim.SetHumanOverride("APPROVED")

	assert.Len(t, claim.AuditLog, 1)
	assert.Equal(t, "heuristic", claim.AuditLog[0].AgentName)
	assert.Equal(t, &score, claim.AuditLog[0].Confidence)
	if assert.NotNil(t, claim.HumanOverride) {
		assert.Equal(t, "APPROVED", *claim.HumanOverride)
	}
}

func TestClaimClone(t *testing.T) {
	claim := NewClaim("Ada Doyle", 1200, "windshield crack")
	claim.RecordState(StateUnderReview)
	claim.SetHumanOverride("REJECTED")

	clone := claim.Clone()
	assert.Equal(t, claim.ID, clone.ID)
	assert.EqualValues(t, claim.History(), clone.History())

	clone.RecordState(StateAssessment)
	clone.SetHumanOverride("APPROVED")
	assert.Equal(t, StateUnderReview, claim.State())
	assert.Equal(t, "REJECTED", *claim.HumanOverride)
}

func TestClaimCopyFromSkipsImmutableFields(t *testing.T) {
	dst := NewClaim("Ada Doyle", 1200, "windshield crack")
	src := dst.Clone()
	src.ClaimantName = "someone else"
	src.Amount = 99999
	src.RecordState(StateUnderReview)
	src.SetRequiresInvestigation(true)

	dst.CopyFrom(src)
	assert.Equal(t, "Ada Doyle", dst.ClaimantName)
	assert.Equal(t, 1200.0, dst.Amount)
	assert.Equal(t, StateUnderReview, dst.State())
	assert.True(t, dst.RequiresInvestigation)
}
