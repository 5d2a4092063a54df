package text

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimkit/claimkit/model"
)

// chatServer fakes an OpenAI-compatible chat-completion endpoint returning
// the supplied message content.
func chatServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "http://localhost:8080/v1"})
	assert.NoError(t, err)
}

func TestEvaluateSuspiciousTranscript(t *testing.T) {
	server := chatServer(t, `{"inconsistency_score": 7, "contradictions": ["date of loss shifted"], "verdict": "SUSPICIOUS", "reasoning": "story changed between call and claim"}`)
	defer server.Close()

	svc, err := New(Config{BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	claim := model.NewClaim("Max Finch", 98000, "total loss on 3rd March")
	claim.CallLog = "caller said the accident happened in February"

	verdict, err := svc.Evaluate(context.Background(), claim)
	require.NoError(t, err)
	assert.True(t, verdict.Suspicious)
	assert.Equal(t, 7.0, verdict.Score)
	assert.Contains(t, verdict.Rationale, "date of loss shifted")
}

func TestEvaluateConsistentTranscript(t *testing.T) {
	server := chatServer(t, `{"inconsistency_score": 2, "contradictions": [], "verdict": "CONSISTENT", "reasoning": "accounts line up"}`)
	defer server.Close()

	svc, err := New(Config{BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	claim.CallLog = "caller described the crack consistently"

	verdict, err := svc.Evaluate(context.Background(), claim)
	require.NoError(t, err)
	assert.False(t, verdict.Suspicious)
	assert.Equal(t, 2.0, verdict.Score)
}

func TestEvaluateNoCallLog(t *testing.T) {
	svc, err := New(Config{BaseURL: "http://localhost:1/v1"})
	require.NoError(t, err)

	verdict, err := svc.Evaluate(context.Background(), model.NewClaim("Ada Doyle", 1200, "windshield crack"))
	require.NoError(t, err)
	assert.False(t, verdict.Suspicious)
	assert.Equal(t, 0.0, verdict.Score)
}

func TestParseVerdict(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		score   int
		fails   bool
	}{
		{"plain", `{"inconsistency_score": 5, "verdict": "SUSPICIOUS", "reasoning": "x"}`, 5, false},
		{"fenced", "```json\n{\"inconsistency_score\": 3, \"verdict\": \"CONSISTENT\", \"reasoning\": \"x\"}\n```", 3, false},
		{"surroundingProse", `Here is my verdict: {"inconsistency_score": 9, "verdict": "SUSPICIOUS", "reasoning": "x"} as requested`, 9, false},
		{"outOfRange", `{"inconsistency_score": 11, "verdict": "SUSPICIOUS", "reasoning": "x"}`, 0, true},
		{"negative", `{"inconsistency_score": -1, "verdict": "CONSISTENT", "reasoning": "x"}`, 0, true},
		{"notJSON", "I cannot help with that", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := parseVerdict(tc.content)
			if tc.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.score, verdict.InconsistencyScore)
		})
	}
}
