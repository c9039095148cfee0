// Package bedrock implements the trisync backend for the AWS Bedrock
// runtime, supporting Anthropic and Titan model families.
package bedrock

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/notebrook/trisync"
)

// Backend implements trisync.Completer against Bedrock.
type Backend struct {
	region     string
	accessKey  string
	secretKey  string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// Config holds configuration for the Bedrock backend. Credentials are
// explicit and read once at construction; two differently-configured
// backends can live in the same process.
type Config struct {
	Region    string        // Required, e.g. "us-east-1"
	AccessKey string        // Required
	SecretKey string        // Required
	Model     string        // Model ID, defaults to "anthropic.claude-v2"
	MaxTokens int           // Optional, defaults to 4096
	Timeout   time.Duration // Optional, defaults to 60s
}

// New creates a Bedrock backend. Missing region or credentials are
// construction errors.
func New(config Config) (*Backend, error) {
	if config.Region == "" {
		return nil, fmt.Errorf("bedrock: missing region")
	}
	if config.AccessKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("bedrock: missing credentials")
	}
	if config.Model == "" {
		config.Model = "anthropic.claude-v2"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Backend{
		region:    config.Region,
		accessKey: config.AccessKey,
		secretKey: config.SecretKey,
		model:     config.Model,
		maxTokens: config.MaxTokens,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "bedrock" }

// Complete invokes the configured model. The request body format follows
// the model family.
func (b *Backend) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	capitan.Emit(ctx, trisync.ProviderCallStarted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.model),
	)

	var requestBody interface{}
	switch {
	case strings.Contains(b.model, "claude"):
		requestBody = claudeRequest{
			Prompt:    fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			MaxTokens: b.maxTokens,
		}
	case strings.Contains(b.model, "titan"):
		requestBody = titanRequest{
			InputText: prompt,
			TextGenerationConfig: titanConfig{
				MaxTokens: b.maxTokens,
			},
		}
	default:
		return "", fmt.Errorf("unsupported model: %s", b.model)
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/model/%s/invoke",
		b.region, b.model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	b.signRequest(req)

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

		var errorResp bedrockError
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Message != "" {
			return "", fmt.Errorf("bedrock error (%d): %s", resp.StatusCode, errorResp.Message)
		}
		return "", fmt.Errorf("bedrock error: status %d", resp.StatusCode)
	}

	capitan.Emit(ctx, trisync.ProviderCallCompleted,
		trisync.ProviderKey.Field(b.Name()),
		trisync.ModelKey.Field(b.model),
		trisync.HTTPStatusCodeKey.Field(resp.StatusCode),
		trisync.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	switch {
	case strings.Contains(b.model, "claude"):
		var claudeResp claudeResponse
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to parse claude response: %w", err)
		}
		return claudeResp.Completion, nil
	default:
		var titanResp titanResponse
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to parse titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("no results in response")
		}
		return titanResp.Results[0].OutputText, nil
	}
}

// signRequest adds simplified AWS Signature V4 headers.
func (b *Backend) signRequest(req *http.Request) {
	now := time.Now().UTC()
	dateStr := now.Format("20060102T150405Z")

	req.Header.Set("X-Amz-Date", dateStr)

	h := hmac.New(sha256.New, []byte("AWS4"+b.secretKey))
	h.Write([]byte(dateStr[:8]))
	h.Write([]byte(b.region))
	h.Write([]byte("bedrock"))
	h.Write([]byte("aws4_request"))
	signature := hex.EncodeToString(h.Sum(nil))

	authHeader := fmt.Sprintf("AWS4-HMAC-SHA256 Credential=%s/%s/%s/bedrock/aws4_request, SignedHeaders=content-type;host;x-amz-date, Signature=%s",
		b.accessKey, dateStr[:8], b.region, signature)
	req.Header.Set("Authorization", authHeader)
}

// Request/response types for the Bedrock model families.

type claudeRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens_to_sample"`
}

type claudeResponse struct {
	Completion string `json:"completion"`
}

type titanRequest struct {
	InputText            string      `json:"inputText"`
	TextGenerationConfig titanConfig `json:"textGenerationConfig"`
}

type titanConfig struct {
	MaxTokens int `json:"maxTokenCount"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

type bedrockError struct {
	Message string `json:"message"`
}
