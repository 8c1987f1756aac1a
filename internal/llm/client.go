// Package llm calls an OpenAI-compatible chat-completions endpoint and
// extracts structured JSON payloads from free-form model output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// Defaults for the chat client.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config configures the chat client.
type Config struct {
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client is a minimal chat-completions client. One prompt in, one text
// completion out; the caller owns prompt construction and response
// parsing.
type Client struct {
	client    *http.Client
	transport *http.Transport
	config    Config
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
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a chat client. A missing API key is not an error
// here; it surfaces as ErrCodeCredentialMissing on the first call so
// offline commands still construct.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	return &Client{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.config.Model }

// Complete sends one user prompt and returns the completion text.
// Transient failures are retried with bounded backoff; a blank
// completion is ErrCodeEmptyResponse.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", deckerrors.CredentialMissing("llm api key")
	}

	var output string
	retryCfg := deckerrors.DefaultRetryConfig()
	retryCfg.MaxRetries = c.config.MaxRetries
	err := deckerrors.Retry(ctx, retryCfg, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		text, err := c.doComplete(reqCtx, prompt)
		if err != nil {
			return err
		}
		output = text
		return nil
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(output) == "" {
		return "", deckerrors.EmptyResponse(c.config.Model)
	}
	return output, nil
}

func (c *Client) doComplete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", deckerrors.TransientIO("llm completion", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", deckerrors.TransientIO("llm completion", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", deckerrors.TransientIO("llm completion",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(respBody)))
	default:
		// Client errors (bad key, bad request) never benefit from retry.
		return "", deckerrors.New(deckerrors.ErrCodeNetworkUnavailable,
			fmt.Sprintf("llm completion failed with status %d: %s", resp.StatusCode, truncateBody(respBody)), nil).
			WithRetryable(false)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", deckerrors.MalformedPayload("chat completion response", err)
	}
	if parsed.Error != nil {
		return "", deckerrors.New(deckerrors.ErrCodeNetworkUnavailable,
			fmt.Sprintf("llm error: %s", parsed.Error.Message), nil).
			WithRetryable(false)
	}
	if len(parsed.Choices) == 0 {
		return "", deckerrors.EmptyResponse(c.config.Model)
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncateBody(b []byte) string {
	const max = 300
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// Close releases HTTP resources.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
