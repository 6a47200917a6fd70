package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PerplexityClient talks to Perplexity's chat API. Its "sonar" models browse
// the web, which is what the web-search fetcher relies on.
type PerplexityClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewPerplexityClient(apiKey string) *PerplexityClient {
	return &PerplexityClient{
		apiKey:     apiKey,
		baseURL:    "https://api.perplexity.ai/chat/completions",
		model:      "sonar",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *PerplexityClient) WithBaseURL(baseURL string) *PerplexityClient {
	c.baseURL = baseURL
	return c
}

func (c *PerplexityClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *PerplexityClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: PERPLEXITY_API_KEY not set", ErrAIUnavailable)
	}

	messages := []perplexityMessage{}
	if systemPrompt != "" {
		messages = append(messages, perplexityMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, perplexityMessage{Role: "user", Content: prompt})

	jsonData, err := json.Marshal(perplexityRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Perplexity API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Perplexity API error (status %d): %s", resp.StatusCode, string(body))
	}

	var perplexityResp perplexityResponse
	if err := json.Unmarshal(body, &perplexityResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if perplexityResp.Error != nil {
		return "", fmt.Errorf("Perplexity API error: %s", perplexityResp.Error.Message)
	}

	if len(perplexityResp.Choices) == 0 {
		return "", fmt.Errorf("no response from Perplexity")
	}

	return perplexityResp.Choices[0].Message.Content, nil
}
