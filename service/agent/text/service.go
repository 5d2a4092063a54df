package text

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/agent"
)

// SuspicionThreshold is the inconsistency score at and above which the text
// agent flags a claim.
const SuspicionThreshold = 5

const systemPrompt = `You are a forensic linguist specialising in insurance fraud. Compare a phone call transcript with a written claim and score their inconsistency from 0 (consistent) to 10 (fundamentally incompatible). Look for fact mismatches, story shifts and pressure indicators.
Respond with ONLY a JSON object: {"inconsistency_score": <0-10>, "contradictions": ["..."], "verdict": "CONSISTENT"|"SUSPICIOUS", "reasoning": "..."}. No markdown, no text outside the JSON.`

// Config holds the chat-completion endpoint settings for the text adapter.
// BaseURL allows pointing the client at any OpenAI-compatible server.
type Config struct {
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	BaseURL string        `json:"baseURL" yaml:"baseURL"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Service is the text-consistency collaborator: it scores the claimant's
// call transcript against the written description via a chat-completion
// model. Only the structured verdict crosses back into the engine.
type Service struct {
	client *openai.Client
	config Config
}

// New creates a text agent. The API key is required unless BaseURL points at
// a keyless local server.
func New(config Config) (*Service, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("text agent requires an API key or a base URL")
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the agent name.
func (s *Service) Name() string { return "text" }

type textVerdict struct {
	InconsistencyScore int      `json:"inconsistency_score"`
	Contradictions     []string `json:"contradictions"`
	Verdict            string   `json:"verdict"`
	Reasoning          string   `json:"reasoning"`
}

// Evaluate scores the claim's call log against its written description.
func (s *Service) Evaluate(ctx context.Context, claim *model.Claim) (*agent.Verdict, error) {
	if claim.CallLog == "" {
		return &agent.Verdict{
			Agent:     s.Name(),
			Score:     0,
			Rationale: "no call transcript attached, nothing to compare",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"CALL TRANSCRIPT:\n%s\n\nWRITTEN CLAIM:\n%s", claim.CallLog, claim.Description)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("text agent call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("text agent returned no choices")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	rationale := verdict.Reasoning
	if len(verdict.Contradictions) > 0 {
		rationale = fmt.Sprintf("%s (contradictions: %s)", rationale, strings.Join(verdict.Contradictions, "; "))
	}
	return &agent.Verdict{
		Agent:      s.Name(),
		Suspicious: verdict.InconsistencyScore >= SuspicionThreshold,
		Score:      float64(verdict.InconsistencyScore),
		Rationale:  rationale,
	}, nil
}

func parseVerdict(content string) (*textVerdict, error) {
	text := strings.TrimSpace(content)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	var verdict textVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("malformed text verdict: %w", err)
	}
	if verdict.InconsistencyScore < 0 || verdict.InconsistencyScore > 10 {
		return nil, fmt.Errorf("text verdict score %d out of range", verdict.InconsistencyScore)
	}
	return &verdict, nil
}
