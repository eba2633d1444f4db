package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	anthropicVersion = "2023-06-01"

	maxRetriesPerTransport = 1
)

// Client is a Claude API client used for intent classification and reply
// generation. Endpoints form an ordered transport chain: each is tried in
// sequence under the caller's context budget.
type Client struct {
	apiKey      string
	model       string
	endpoints   []string
	httpClient  *http.Client
	temperature float64
	maxTokens   int
}

// NewClient creates a new Claude API client. fallbackURL is optional; when set
// it is tried after the primary endpoint fails.
func NewClient(apiKey, model string, temperature float64, fallbackURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	endpoints := []string{defaultAPIURL}
	if fallbackURL != "" {
		endpoints = append(endpoints, fallbackURL)
	}

	return &Client{
		apiKey:      apiKey,
		model:       model,
		endpoints:   endpoints,
		temperature: temperature,
		maxTokens:   defaultMaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// anthropicRequest represents the API request structure
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the API response structure
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a single-turn completion request and returns the model's
// text. All endpoints in the transport chain share the context's deadline.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		var text string
		attempt := func() error {
			var err error
			text, err = c.completeVia(ctx, endpoint, reqBody)
			return err
		}

		// One retry per transport before falling through to the next one, all
		// under the caller's deadline.
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetriesPerTransport), ctx)
		if err := backoff.Retry(attempt, policy); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("all transports failed: %w", lastErr)
}

func (c *Client) completeVia(ctx context.Context, endpoint string, reqBody []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", errors.New("empty response from API")
	}

	return apiResp.Content[0].Text, nil
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// ExtractJSON attempts to extract a JSON object from a response that might be
// wrapped in markdown
func ExtractJSON(text string) string {
	start := 0
	if idx := findJSONStart(text); idx >= 0 {
		start = idx
	}

	end := len(text)
	if idx := findJSONEnd(text, start); idx >= 0 {
		end = idx + 1
	}

	return text[start:end]
}

func findJSONStart(text string) int {
	// Look for opening brace, possibly after ```json
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(text string, start int) int {
	// Find matching closing brace
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
