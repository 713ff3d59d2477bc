// Package genai is the HTTP client for the user-configured
// chat-completions-compatible generation endpoint. It carries the two
// offline extraction contracts (similar-question expansion, document QA
// extraction) and a streaming mode for the model test console.
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/pkg/circuitbreaker"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
	"github.com/dijkstrabc/shittykbsystem/pkg/retry"
)

var (
	// ErrInvalidHeader: the API key (or another header value) contains
	// bytes outside Latin-1, which http header encoding cannot carry.
	// Rejected before anything is sent.
	ErrInvalidHeader = errors.New("header value contains non-Latin-1 characters")

	// ErrMalformedResponse: the endpoint answered 2xx but the body is not
	// the expected shape. Distinct from transport failure so callers can
	// tell "service unreachable" from "service returned garbage".
	ErrMalformedResponse = errors.New("malformed generation response")

	// ErrRequestFailed wraps network-level failures. When this surfaces
	// from a browser-facing deployment it usually means a cross-origin or
	// mixed-content restriction, so the message carries that hint.
	ErrRequestFailed = errors.New("network request failed")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type thinkingOption struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model     string          `json:"model"`
	Messages  []Message       `json:"messages"`
	Stream    bool            `json:"stream,omitempty"`
	Thinking  *thinkingOption `json:"thinking,omitempty"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	MaxTokens  int
	Thinking   bool
	TimeoutSec int
}

type Client struct {
	cfg         Config
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("genai", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:     3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		JitterFraction:  0.1,
		RetryableErrors: []error{ErrRequestFailed},
		Logger:          logger.GetLogger(),
	}

	logger.Info("Generation client initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("model", cfg.Model),
	)

	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: timeout},
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// isLatin1 reports whether every rune of s fits in the Latin-1 byte range.
func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

func (c *Client) newRequest(ctx context.Context, body completionRequest, stream bool) (*http.Request, error) {
	if !isLatin1(c.cfg.APIKey) {
		return nil, fmt.Errorf("%w: check the configured API key", ErrInvalidHeader)
	}

	body.Model = c.cfg.Model
	body.Stream = stream
	if c.cfg.Thinking {
		body.Thinking = &thinkingOption{Type: "enabled"}
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.cfg.MaxTokens
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	return req, nil
}

// Complete sends a non-streaming chat completion and returns the assistant
// message content. Transport failures and non-2xx statuses come back as
// ErrRequestFailed; a 2xx with an unexpected body as ErrMalformedResponse.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			req, err := c.newRequest(ctx, completionRequest{Messages: messages}, false)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v (if running behind a browser, check cross-origin and mixed-content settings)", ErrRequestFailed, err)
			}
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("%w: reading response body: %v", ErrRequestFailed, err)
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("%w: endpoint returned status %d: %s", ErrRequestFailed, resp.StatusCode, snippet(raw))
			}

			var parsed completionResponse
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			if len(parsed.Choices) == 0 {
				return fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
			}

			content = parsed.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	logger.Debug("Completion generated", zap.Int("content_length", len(content)))
	return content, nil
}

// StreamChat sends a streaming completion, invoking onDelta for every
// incremental content payload until the [DONE] sentinel. Streaming requests
// are not retried; a half-delivered stream cannot be replayed safely.
func (c *Client) StreamChat(ctx context.Context, messages []Message, onDelta func(string) error) error {
	return c.cb.Execute(ctx, func() error {
		req, err := c.newRequest(ctx, completionRequest{Messages: messages}, true)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v (if running behind a browser, check cross-origin and mixed-content settings)", ErrRequestFailed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			raw, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("%w: endpoint returned status %d: %s", ErrRequestFailed, resp.StatusCode, snippet(raw))
		}

		parser := &streamParser{}
		reader := bufio.NewReader(resp.Body)
		buf := make([]byte, 4096)

		for !parser.finished() {
			n, readErr := reader.Read(buf)
			if n > 0 {
				for _, delta := range parser.feed(string(buf[:n])) {
					if err := onDelta(delta); err != nil {
						return err
					}
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return fmt.Errorf("%w: reading stream: %v", ErrRequestFailed, readErr)
			}
		}

		return nil
	})
}

// stripCodeFence peels a Markdown code fence off content that models wrap
// around JSON payloads.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		// Drop the language tag line ("json", usually).
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// completeJSON runs Complete and second-parses the content as JSON after
// stripping any code fence.
func (c *Client) completeJSON(ctx context.Context, messages []Message, out any) error {
	content, err := c.Complete(ctx, messages)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(stripCodeFence(content)), out); err != nil {
		return fmt.Errorf("%w: content is not the expected JSON: %v", ErrMalformedResponse, err)
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
