// Package completion calls the external text-generation service. The client
// performs no retries: a failed call ends the turn, and the caller decides
// what that means.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/prompt"
)

// ErrMissingCredential is returned before any network I/O when no API key is
// configured. The run must abort; it is not a retryable condition.
var ErrMissingCredential = errors.New("completion: missing API credential")

// UpstreamError reports a failed call or a response missing the expected
// message content.
type UpstreamError struct {
	Status int
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion: %s (status %d)", e.Reason, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("completion: %s: %v", e.Reason, e.Err)
	}
	return "completion: " + e.Reason
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type Client struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewClient creates a completion client for an OpenAI-style chat-completions
// endpoint with bearer authentication.
func NewClient(apiURL, apiKey, model string, temperature float64, timeout time.Duration) *Client {
	return &Client{
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the generation request and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, req prompt.Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &UpstreamError{Status: resp.StatusCode, Reason: "service returned non-200"}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &UpstreamError{Reason: "decode response", Err: err}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &UpstreamError{Reason: "response missing message content"}
	}

	return parsed.Choices[0].Message.Content, nil
}
