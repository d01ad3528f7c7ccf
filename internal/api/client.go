// Package api wraps the backend HTTP endpoints the click router depends
// on: fetching the entity a notification refers to and marking a chat
// room read.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TokenSource supplies the bearer token attached to backend requests.
// The session layer implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is a thin HTTP client for the application backend and the chat
// backend. It handles bearer authentication, JSON unmarshaling, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL     string
	chatBaseURL string
	tokens      TokenSource
	httpClient  *http.Client
	maxRetries  int
}

// NewClient creates a backend client. baseURL is the main API root and
// chatBaseURL the chat API root; both are stripped of trailing slashes.
func NewClient(baseURL, chatBaseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		chatBaseURL: strings.TrimRight(chatBaseURL, "/"),
		tokens:      tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// get performs an authenticated GET against the main backend and
// unmarshals the JSON response into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolving token: %w", err)
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing GET %s: %w", path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on GET %s", path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{
				StatusCode: resp.StatusCode,
				Path:       path,
				Body:       string(respBody),
			}
		}

		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// postChatForm performs a multipart form POST against the chat backend.
// The chat backend expects the raw token in the Authorization header,
// without the Bearer prefix.
func (c *Client) postChatForm(ctx context.Context, path string, fields map[string]string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolving token: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("writing form field %q: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing form body: %w", err)
	}

	url := c.chatBaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Body:       string(respBody),
		}
	}

	return nil
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
