package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LovationAdmin/storefinder-api/utils"
)

// LLMClient is the single round-trip chat surface used by the AI crawl
// fetcher and the AI deduplicator.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ============================================================================
// CLAUDE AI SERVICE
// ============================================================================

type ClaudeAIService struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type ClaudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []ClaudeMessage `json:"messages"`
}

type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func NewClaudeAIService(apiKey string) *ClaudeAIService {
	return &ClaudeAIService{
		apiKey:     apiKey,
		baseURL:    "https://api.anthropic.com/v1/messages",
		model:      "claude-3-5-sonnet-latest",
		maxTokens:  4000,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func (s *ClaudeAIService) WithBaseURL(baseURL string) *ClaudeAIService {
	s.baseURL = baseURL
	return s
}

func (s *ClaudeAIService) Configured() bool {
	return s != nil && s.apiKey != ""
}

func (s *ClaudeAIService) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrAIUnavailable)
	}

	requestBody := ClaudeRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    systemPrompt,
		Messages: []ClaudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	return s.executeRequest(ctx, requestBody)
}

func (s *ClaudeAIService) executeRequest(ctx context.Context, requestBody ClaudeRequest) (string, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	utils.SafeDebug("[Claude AI] Model: %s | Tokens: In %d / Out %d | Cost: $%.5f",
		claudeResp.Model,
		claudeResp.Usage.InputTokens,
		claudeResp.Usage.OutputTokens,
		EstimateCost(claudeResp.Usage.InputTokens, claudeResp.Usage.OutputTokens),
	)

	return claudeResp.Content[0].Text, nil
}

// Pricing (approximate for Claude 3.5 Sonnet)
const (
	InputTokenPrice  = 0.000003 // $3 per million
	OutputTokenPrice = 0.000015 // $15 per million
)

func EstimateCost(inputTokens int, outputTokens int) float64 {
	return float64(inputTokens)*InputTokenPrice + float64(outputTokens)*OutputTokenPrice
}
