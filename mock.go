package trisync

import (
	"context"
	"fmt"
	"strings"
)

// MockCompleter simulates a backend for testing. It answers from prompt
// patterns: prompts carrying the JSON contract get a contract-shaped reply,
// everything else gets plain text.
type MockCompleter struct {
	name      string
	available bool
}

// NewMockCompleter creates a pattern-matching mock backend.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{name: "mock", available: true}
}

// Name returns the backend identifier.
func (m *MockCompleter) Name() string { return m.name }

// SetAvailable toggles simulated availability (for failure-path tests).
func (m *MockCompleter) SetAvailable(available bool) {
	m.available = available
}

// Complete answers deterministically from the prompt shape.
func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if !m.available {
		return "", fmt.Errorf("backend %s is unavailable", m.name)
	}

	if strings.Contains(prompt, "Return JSON matching this schema exactly:") {
		return `{"code": "result = 1", "symbols": [{"name": "result", "kind": "variable", "type": "int", "description": "mock result"}], "notebookSymbols": []}`, nil
	}
	return "Mock instruction", nil
}

// NewMockProvider wraps the pattern-matching mock into a full Provider.
func NewMockProvider() Provider {
	return NewProvider(NewMockCompleter())
}

// NewMockCompleterWithResponse creates a mock that always returns one reply.
func NewMockCompleterWithResponse(response string) Completer {
	return &mockFixed{response: response}
}

// NewMockCompleterWithCallback creates a mock backed by a function.
func NewMockCompleterWithCallback(callback func(ctx context.Context, prompt string) (string, error)) Completer {
	return &mockCallback{callback: callback}
}

type mockFixed struct {
	response string
}

func (m *mockFixed) Name() string { return "mock" }

func (m *mockFixed) Complete(_ context.Context, _ string) (string, error) {
	return m.response, nil
}

type mockCallback struct {
	callback func(context.Context, string) (string, error)
}

func (m *mockCallback) Name() string { return "mock" }

func (m *mockCallback) Complete(ctx context.Context, prompt string) (string, error) {
	return m.callback(ctx, prompt)
}
