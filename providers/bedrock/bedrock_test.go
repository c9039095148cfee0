package bedrock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// testTransport redirects the hardcoded Bedrock endpoint to a test server.
type testTransport struct {
	server *httptest.Server
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, _ := url.Parse(t.server.URL)
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testBackend(server *httptest.Server, model string) *Backend {
	return &Backend{
		region:    "us-east-1",
		accessKey: "test-access",
		secretKey: "test-secret",
		model:     model,
		maxTokens: 4096,
		httpClient: &http.Client{
			Transport: &testTransport{server: server},
			Timeout:   5 * time.Second,
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Region: "us-east-1", AccessKey: "a", SecretKey: "s"}, false},
		{"missing region", Config{AccessKey: "a", SecretKey: "s"}, true},
		{"missing access key", Config{Region: "us-east-1", SecretKey: "s"}, true},
		{"missing secret key", Config{Region: "us-east-1", AccessKey: "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.model != "anthropic.claude-v2" {
				t.Errorf("Default model = %s", b.model)
			}
		})
	}
}

func TestCompleteClaude(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/model/anthropic.claude-v2/invoke") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Amz-Date") == "" {
			t.Error("Request not signed")
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256") {
			t.Errorf("Authorization header = %q", r.Header.Get("Authorization"))
		}

		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if !strings.Contains(req.Prompt, "Human: shorten this") {
			t.Errorf("Prompt not wrapped for claude: %q", req.Prompt)
		}

		json.NewEncoder(w).Encode(claudeResponse{Completion: "Load the sales data"})
	}))
	defer server.Close()

	b := testBackend(server, "anthropic.claude-v2")
	got, err := b.Complete(context.Background(), "shorten this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Load the sales data" {
		t.Errorf("Unexpected reply: %q", got)
	}
}

func TestCompleteTitan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req titanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if req.InputText != "shorten this" {
			t.Errorf("InputText = %q", req.InputText)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{{"outputText": "Load the sales data"}},
		})
	}))
	defer server.Close()

	b := testBackend(server, "amazon.titan-text-express-v1")
	got, err := b.Complete(context.Background(), "shorten this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Load the sales data" {
		t.Errorf("Unexpected reply: %q", got)
	}
}

func TestCompleteUnsupportedModel(t *testing.T) {
	b := testBackend(nil, "cohere.command-v14")
	_, err := b.Complete(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "unsupported model") {
		t.Errorf("Expected unsupported model error, got %v", err)
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
			name:       "access denied with message",
			statusCode: http.StatusForbidden,
			body:       `{"message": "not authorized"}`,
			wantErr:    "not authorized",
		},
		{
			name:       "opaque server error",
			statusCode: http.StatusInternalServerError,
			body:       `not json`,
			wantErr:    "status 500",
		},
		{
			name:       "titan empty results",
			statusCode: http.StatusOK,
			body:       `{"results": []}`,
			wantErr:    "no results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			b := testBackend(server, "amazon.titan-text-express-v1")
			_, err := b.Complete(context.Background(), "prompt")
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
	b := testBackend(nil, "anthropic.claude-v2")
	if b.Name() != "bedrock" {
		t.Errorf("Name = %s", b.Name())
	}
}
