package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimkit/claimkit/model"
)

func TestHeuristicEvaluate(t *testing.T) {
	h := NewHeuristic("heuristic", 0)
	ctx := context.Background()

	testCases := []struct {
		name       string
		amount     float64
		flagged    bool
		suspicious bool
		score      float64
	}{
		{"clean", 1200, false, false, 1},
		{"aboveThreshold", 60000, false, true, 8},
		{"atThreshold", DefaultAmountThreshold, false, false, 1},
		{"flaggedAtCreation", 1200, true, true, 6},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claim := model.NewClaim("Ada Doyle", tc.amount, "windshield crack")
			claim.RequiresInvestigation = tc.flagged
			verdict, err := h.Evaluate(ctx, claim)
			require.NoError(t, err)
			assert.Equal(t, tc.suspicious, verdict.Suspicious)
			assert.Equal(t, tc.score, verdict.Score)
			assert.Equal(t, "heuristic", verdict.Agent)
		})
	}
}

func TestHeuristicHonoursContextCancellation(t *testing.T) {
	h := NewHeuristic("heuristic", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Evaluate(ctx, model.NewClaim("Ada Doyle", 1200, "windshield crack"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDegradedVerdict(t *testing.T) {
	v := Degraded("vision", context.DeadlineExceeded)
	assert.True(t, v.Failed())
	assert.False(t, v.Suspicious)
	assert.Equal(t, 0.0, v.Score)

	clean := &Verdict{Agent: "vision", Score: 1}
	assert.False(t, clean.Failed())
}
