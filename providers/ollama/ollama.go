// Package ollama implements the trisync backend for a local Ollama
// endpoint.
package ollama

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

// Backend implements trisync.Completer against Ollama's /api/chat.
type Backend struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the Ollama backend. No credentials; the
// endpoint URL is the only identity.
type Config struct {
	BaseURL string        // Optional, defaults to "http://localhost:11434"
	Model   string        // Optional, defaults to "llama3"
	Timeout time.Duration // Optional, defaults to 120s (local models are slow)
}

// New creates an Ollama backend.
func New(config Config) (*Backend, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Model == "" {
		config.Model = "llama3"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	return &Backend{
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "ollama" }

// Complete sends the prompt as one non-streaming chat turn.
func (b *Backend) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	capitan.Emit(ctx, trisync.ProviderCallStarted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.model),
	)

	requestBody := chatRequest{
		Model: b.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
			return "", fmt.Errorf("ollama error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return "", fmt.Errorf("ollama error: status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("empty response from model")
	}

	capitan.Emit(ctx, trisync.ProviderCallCompleted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(chatResp.Model),
		trisync.HTTPStatusCodeKey.Field(resp.StatusCode),
		trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	return chatResp.Message.Content, nil
}

// Request/response types for the Ollama API.

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}
