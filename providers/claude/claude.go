// Package claude implements the trisync backend for the Anthropic messages
// API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/notebrook/trisync"
)

// Backend implements trisync.Completer against the Anthropic API.
type Backend struct {
	apiKey     string
	model      string
	version    string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

// Config holds configuration for the Anthropic backend. Credentials are
// read once at construction; nothing touches process environment.
type Config struct {
	APIKey    string        // Required
	Model     string        // e.g. "claude-sonnet-4-20250514"
	Version   string        // API version, defaults to "2023-06-01"
	BaseURL   string        // Optional, defaults to "https://api.anthropic.com/v1"
	MaxTokens int           // Optional, defaults to 4096
	Timeout   time.Duration // Optional, defaults to 60s
}

// New creates an Anthropic backend. A missing API key is a construction
// error, not a runtime one.
func New(config Config) (*Backend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("claude: missing API key")
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	if config.Version == "" {
		config.Version = "2023-06-01"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Backend{
		apiKey:    config.APIKey,
		model:     config.Model,
		version:   config.Version,
		baseURL:   config.BaseURL,
		maxTokens: config.MaxTokens,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "claude" }

// Complete sends the prompt to the messages endpoint and returns the
// concatenated text blocks of the reply.
func (b *Backend) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	capitan.Emit(ctx, trisync.ProviderCallStarted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.model),
	)

	requestBody := messagesRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", b.version)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		capitan.Emit(ctx, trisync.ProviderCallFailed,
			trisync.ProviderKey.Field(b.Name()),
			trisync.ErrorKey.Field(err.Error()),
		)
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		capitan.Emit(ctx, trisync.ProviderCallFailed,
			trisync.ProviderKey.Field(b.Name()),
			trisync.HTTPStatusCodeKey.Field(resp.StatusCode),
			trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
		)

		var errorResp errorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			if resp.StatusCode == http.StatusTooManyRequests {
				return "", fmt.Errorf("rate limit exceeded: %s", errorResp.Error.Message)
			}
			return "", fmt.Errorf("claude error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}
		return "", fmt.Errorf("claude error: status %d", resp.StatusCode)
	}

	var messagesResp messagesResponse
	if err := json.Unmarshal(body, &messagesResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var result string
	for _, content := range messagesResp.Content {
		if content.Type == "text" {
			result += content.Text
		}
	}
	if result == "" {
		return "", fmt.Errorf("no text content in response")
	}

	capitan.Emit(ctx, trisync.ProviderCallCompleted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(messagesResp.Model),
		trisync.HTTPStatusCodeKey.Field(resp.StatusCode),
		trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	return result, nil
}

// Request/response types for the Anthropic API.

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
