// Package openai implements the trisync backend for the OpenAI chat
// completions API.
package openai

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

// Backend implements trisync.Completer against the OpenAI API.
type Backend struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float32
	httpClient  *http.Client
}

// Config holds configuration for the OpenAI backend.
type Config struct {
	APIKey      string        // Required
	Model       string        // e.g. "gpt-4o", defaults to "gpt-4o-mini"
	BaseURL     string        // Optional, defaults to "https://api.openai.com/v1"
	Temperature float32       // Optional, defaults to 0.1
	Timeout     time.Duration // Optional, defaults to 60s
}

// New creates an OpenAI backend. A missing API key is a construction
// error.
func New(config Config) (*Backend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Backend{
		apiKey:      config.APIKey,
		model:       config.Model,
		baseURL:     config.BaseURL,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "openai" }

// Complete sends the prompt as a single user message. Responses stay
// freeform; structured output is negotiated by the prompt contract, not by
// API JSON mode, because non-code directions return plain text.
func (b *Backend) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	capitan.Emit(ctx, trisync.ProviderCallStarted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.model),
	)

	requestBody := chatCompletionRequest{
		Model: b.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		Temperature: b.temperature,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

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
			return "", fmt.Errorf("openai error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}
		return "", fmt.Errorf("openai error: status %d", resp.StatusCode)
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	capitan.Emit(ctx, trisync.ProviderCallCompleted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(completionResp.Model),
		trisync.HTTPStatusCodeKey.Field(resp.StatusCode),
		trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	return completionResp.Choices[0].Message.Content, nil
}

// Request/response types for the OpenAI API.

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
