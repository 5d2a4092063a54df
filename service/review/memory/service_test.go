package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimkit/claimkit/model"
	cmemory "github.com/claimkit/claimkit/service/dao/claim/memory"
	"github.com/claimkit/claimkit/service/review"
)

func TestRequestReview(t *testing.T) {
	svc := New()
	ctx := context.Background()

	request := &review.Request{ClaimID: "c-1", Reason: "suspicious verdicts"}
	require.NoError(t, svc.RequestReview(ctx, request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c-1", pending[0].ClaimID)

	// the request lands on the event queue
	msg, err := svc.Queue().Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, review.TopicRequestCreated, msg.T().Topic)
	require.NoError(t, msg.Ack())
}

func TestRequestReviewValidation(t *testing.T) {
	svc := New()
	assert.Error(t, svc.RequestReview(context.Background(), nil))
	assert.Error(t, svc.RequestReview(context.Background(), &review.Request{}))
}

func TestDecide(t *testing.T) {
	svc := New()
	ctx := context.Background()
	request := &review.Request{ClaimID: "c-1", Reason: "suspicious verdicts"}
	require.NoError(t, svc.RequestReview(ctx, request))

	decision, err := svc.Decide(ctx, request.ID, true, "evidence checks out")
	require.NoError(t, err)
	assert.True(t, decision.Approved)
	assert.Equal(t, "c-1", decision.ClaimID)

	// decided requests drop off the pending list
	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.Decide(ctx, request.ID, false, "changed my mind")
	assert.Error(t, err)
}

func TestDecideUnknownRequest(t *testing.T) {
	svc := New()
	_, err := svc.Decide(context.Background(), "missing", true, "")
	assert.Error(t, err)
	_, err = svc.Decide(context.Background(), "", true, "")
	assert.Error(t, err)
}

// With a claim store attached, the decision is stamped onto the claim as a
// human override plus an audit entry.
func TestDecideStampsClaimOverride(t *testing.T) {
	claims := cmemory.New()
	svc := New(WithClaimDAO(claims))
	ctx := context.Background()

	claim := model.NewClaim("Ada Doyle", 98000, "total loss")
	require.NoError(t, claims.Save(ctx, claim))

	request := &review.Request{ClaimID: claim.ID, Reason: "fraud agents disagree"}
	require.NoError(t, svc.RequestReview(ctx, request))

	_, err := svc.Decide(ctx, request.ID, false, "photo metadata manipulated")
	require.NoError(t, err)

	require.NotNil(t, claim.HumanOverride)
	assert.Equal(t, review.OutcomeRejected, *claim.HumanOverride)
	require.NotEmpty(t, claim.AuditLog)
	last := claim.AuditLog[len(claim.AuditLog)-1]
	assert.Equal(t, "reviewer", last.AgentName)
	assert.Equal(t, review.OutcomeRejected, last.Decision)
}
