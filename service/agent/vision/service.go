package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/agent"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2-vision"

	// suspiciousScore grades a photo/description mismatch; the model reports
	// the mismatch as a boolean, not a scale.
	suspiciousScore = 8
	cleanScore      = 1
)

const systemPrompt = `You are an expert insurance adjuster. Compare the damage photo with the claimant's written description and flag any mismatch (wrong location, wrong severity, wrong kind of damage).
Respond with ONLY a JSON object: {"detected_damage": "...", "mismatch_found": true|false, "reasoning": "..."}. No markdown, no text outside the JSON.`

// Config holds the Ollama endpoint settings for the vision adapter.
type Config struct {
	BaseURL string        `json:"baseURL" yaml:"baseURL"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Service is the vision collaborator: it asks a local Ollama vision model to
// compare the claim photo with the written description. Only the structured
// verdict crosses the boundary back into the engine.
type Service struct {
	config     Config
	httpClient *http.Client
}

// New creates a vision agent backed by Ollama.
func New(config Config) *Service {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &Service{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the agent name.
func (s *Service) Name() string { return "vision" }

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	System string   `json:"system,omitempty"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type visionVerdict struct {
	DetectedDamage string `json:"detected_damage"`
	MismatchFound  bool   `json:"mismatch_found"`
	Reasoning      string `json:"reasoning"`
}

// Evaluate compares the claim photo with the description and returns the
// structured verdict.
func (s *Service) Evaluate(ctx context.Context, claim *model.Claim) (*agent.Verdict, error) {
	if claim.PhotoURL == "" {
		return &agent.Verdict{
			Agent:     s.Name(),
			Score:     cleanScore,
			Rationale: "no photo attached, nothing to compare",
		}, nil
	}

	prompt := fmt.Sprintf("Claimant description: %q\nDamage photo: %s\nCompare and report any mismatch.",
		claim.Description, claim.PhotoURL)

	body, err := json.Marshal(&generateRequest{
		Model:  s.config.Model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(s.config.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision agent call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision agent returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var generated generateResponse
	if err = json.Unmarshal(data, &generated); err != nil {
		return nil, fmt.Errorf("malformed vision agent response: %w", err)
	}
	verdict, err := parseVerdict(generated.Response)
	if err != nil {
		return nil, err
	}

	score := float64(cleanScore)
	if verdict.MismatchFound {
		score = suspiciousScore
	}
	return &agent.Verdict{
		Agent:      s.Name(),
		Suspicious: verdict.MismatchFound,
		Score:      score,
		Rationale:  verdict.Reasoning,
	}, nil
}

// parseVerdict decodes the model's JSON verdict, tolerating markdown fences
// some models wrap around the object despite instructions.
func parseVerdict(response string) (*visionVerdict, error) {
	text := strings.TrimSpace(response)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	var verdict visionVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("malformed vision verdict: %w", err)
	}
	return &verdict, nil
}
