package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := New(Config{})
		if err == nil {
			t.Fatal("Expected construction error without API key")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		b, err := New(Config{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if b.model != "claude-sonnet-4-20250514" {
			t.Errorf("Default model = %s", b.model)
		}
		if b.version != "2023-06-01" {
			t.Errorf("Default version = %s", b.version)
		}
		if b.maxTokens != 4096 {
			t.Errorf("Default max tokens = %d", b.maxTokens)
		}
	})
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key header = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version header = %q", got)
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if req.MaxTokens != 4096 {
			t.Errorf("MaxTokens = %d", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(messagesResponse{
			Model: "claude-sonnet-4-20250514",
			Content: []content{
				{Type: "text", Text: "Load the "},
				{Type: "text", Text: "sales data"},
			},
		})
	}))
	defer server.Close()

	b, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := b.Complete(context.Background(), "shorten this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Load the sales data" {
		t.Errorf("Text blocks not concatenated: %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    string
	}{
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"type": "rate_limit_error", "message": "slow down"}}`,
			wantErr:    "rate limit exceeded",
		},
		{
			name:       "api error with message",
			statusCode: http.StatusBadRequest,
			body:       `{"error": {"type": "invalid_request_error", "message": "bad model"}}`,
			wantErr:    "bad model",
		},
		{
			name:       "opaque server error",
			statusCode: http.StatusInternalServerError,
			body:       `not json`,
			wantErr:    "status 500",
		},
		{
			name:       "no text content",
			statusCode: http.StatusOK,
			body:       `{"content": [{"type": "tool_use"}]}`,
			wantErr:    "no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			b, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			_, err = b.Complete(context.Background(), "prompt")
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestName(t *testing.T) {
	b, _ := New(Config{APIKey: "k"})
	if b.Name() != "claude" {
		t.Errorf("Name = %s", b.Name())
	}
}
