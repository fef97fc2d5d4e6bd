package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"idfbuilder/internal/domain"
)

const (
	// DefaultChatTimeout is the HTTP timeout used when none is configured
	DefaultChatTimeout = 120 * time.Second

	// maxErrorBody bounds how much of a failed response is kept in the error
	maxErrorBody = 512
)

// ChatCompletionsClient calls an OpenAI-compatible /chat/completions
// endpoint. Both OpenAI and Perplexity speak this protocol.
type ChatCompletionsClient struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewChatCompletionsClient creates a client for the endpoint at baseURL
// (e.g. "https://api.openai.com/v1").
func NewChatCompletionsClient(name, apiKey, baseURL, model string, timeout time.Duration) *ChatCompletionsClient {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &ChatCompletionsClient{
		name:    name,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (c *ChatCompletionsClient) Name() string {
	return c.name
}

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (c *ChatCompletionsClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: %s API key not set", domain.ErrUpstreamUnavailable, c.name)
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s request failed: %v", domain.ErrUpstream, c.name, err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s read response: %v", domain.ErrUpstream, c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s API error (status %d): %s",
			domain.ErrUpstream, c.name, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %s response: %v", domain.ErrMalformedResponse, c.name, err)
	}
	if chatResp.Error != nil && chatResp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrUpstream, c.name, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", domain.ErrMalformedResponse, c.name)
	}

	return chatResp.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse covers the subset of the completions response we read.
// Perplexity adds citations, which are ignored.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsUnavailable reports whether err means the generator could not be used
// at all, as opposed to a failed call.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrUpstreamUnavailable)
}
