package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 120 * time.Second
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxRetryAfter  = 10 * time.Second
)

// Client calls OpenRouter's OpenAI-compatible chat completion endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an OpenRouter client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithBaseURL points the client at another OpenAI-compatible host.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// retryableError marks responses worth another attempt: 429 and the
// gateway statuses OpenRouter returns while an upstream provider is busy.
type retryableError struct {
	status     int
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	if e.status == http.StatusTooManyRequests {
		return fmt.Sprintf("rate limited (HTTP %d)", e.status)
	}
	return fmt.Sprintf("upstream unavailable (HTTP %d)", e.status)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// Complete sends a non-streaming chat completion and returns the first
// choice's text. Retryable statuses back off exponentially, or for the
// server's Retry-After when it is shorter than maxRetryAfter.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		text, err := c.post(ctx, body)
		var re *retryableError
		if !errors.As(err, &re) {
			return text, err
		}
		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}

		wait := initialBackoff << attempt
		if re.retryAfter > 0 && re.retryAfter <= maxRetryAfter {
			wait = re.retryAfter
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", fmt.Errorf("openrouter: giving up after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com/kalambet/promptpilot")
	httpReq.Header.Set("X-Title", "promptpilot")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if retryable(resp.StatusCode) {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return "", &retryableError{status: resp.StatusCode, retryAfter: time.Duration(secs) * time.Second}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openrouter: response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}
