package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimkit/claimkit/model"
)

// ollamaServer fakes the /api/generate endpoint returning the supplied model
// response text.
func ollamaServer(t *testing.T, response string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		assert.False(t, req.Stream)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{Response: response, Done: true})
	}))
}

func newClaim() *model.Claim {
	claim := model.NewClaim("Ada Doyle", 1200, "windshield crack")
	claim.PhotoURL = "https://cdn.example.com/claims/photo.jpg"
	return claim
}

func TestEvaluateMismatch(t *testing.T) {
	server := ollamaServer(t, `{"detected_damage": "dented rear bumper", "mismatch_found": true, "reasoning": "photo shows bumper damage, claim describes a windshield"}`)
	defer server.Close()

	svc := New(Config{BaseURL: server.URL})
	verdict, err := svc.Evaluate(context.Background(), newClaim())
	require.NoError(t, err)
	assert.True(t, verdict.Suspicious)
	assert.Equal(t, 8.0, verdict.Score)
}

func TestEvaluateMatch(t *testing.T) {
	server := ollamaServer(t, "```json\n{\"detected_damage\": \"cracked windshield\", \"mismatch_found\": false, \"reasoning\": \"photo matches the description\"}\n```")
	defer server.Close()

	svc := New(Config{BaseURL: server.URL})
	verdict, err := svc.Evaluate(context.Background(), newClaim())
	require.NoError(t, err)
	assert.False(t, verdict.Suspicious)
	assert.Equal(t, 1.0, verdict.Score)
}

func TestEvaluateNoPhoto(t *testing.T) {
	svc := New(Config{BaseURL: "http://localhost:1"})
	verdict, err := svc.Evaluate(context.Background(), model.NewClaim("Ada Doyle", 1200, "windshield crack"))
	require.NoError(t, err)
	assert.False(t, verdict.Suspicious)
}

func TestEvaluateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := New(Config{BaseURL: server.URL})
	_, err := svc.Evaluate(context.Background(), newClaim())
	assert.Error(t, err)
}

func TestEvaluateMalformedVerdict(t *testing.T) {
	server := ollamaServer(t, "I am unable to inspect images")
	defer server.Close()

	svc := New(Config{BaseURL: server.URL})
	_, err := svc.Evaluate(context.Background(), newClaim())
	assert.Error(t, err)
}
