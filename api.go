// Package trisync keeps three representations of a notebook computation in
// step: a terse instruction ("short"), a step-by-step elaboration
// ("detailed"), and the generated code. Editing any one of them can be
// reconciled into the other two through an LLM-backed sync, without losing
// the {{name:value}} parameter tokens or #symbol mentions a user has
// already pinned down.
//
// The package provides four layers:
//
//   - The parameter codec: lossless transforms between inline
//     {{name:value}} tokens, a flat parameter list, and #symbol mentions.
//   - The prompt builder: direction-aware prompt construction via the
//     structured Prompt type.
//   - The provider abstraction: backends implement Completer; NewProvider
//     wraps one into a full Provider that builds prompts, runs the request
//     pipeline, and parses responses.
//   - The Engine: the orchestrator a notebook controller uses, with a
//     per-cell clean/dirty/syncing state machine.
//
// Basic usage:
//
//	backend, _ := ollama.New(ollama.Config{Model: "llama3"})
//	engine := trisync.NewEngine(trisync.NewProvider(backend))
//	engine.Edit("cell-1", trisync.TabShort, "Plot {{column:revenue}} by month")
//	err := engine.SyncCell(ctx, "cell-1")
package trisync

import "context"

// Provider executes one sync against an LLM backend. Transport and backend
// failures are reported inside the SyncResult, never as a panic; callers can
// rely on Sync always returning a usable value.
//
// Providers must be stateless across calls: every call's SyncContext is
// self-contained, and one Provider instance may serve concurrent syncs for
// different cells.
type Provider interface {
	// Name returns the provider identifier (e.g. "claude", "ollama").
	Name() string

	// Sync builds the prompt for the direction, executes it, and parses
	// the response.
	Sync(ctx context.Context, direction Direction, sc SyncContext) SyncResult
}

// Completer is the narrow surface a backend adapter implements. Adapters
// differ only in how the built prompt is executed and authenticated; the
// prompt construction and response parsing around them is shared.
type Completer interface {
	// Name returns the backend identifier.
	Name() string

	// Complete sends a prompt to the backend and returns the raw reply.
	Complete(ctx context.Context, prompt string) (string, error)
}

// CellSnapshot is a read-only view of a sibling cell, supplied by the
// notebook layer to give a sync execution-order context. The engine never
// mutates snapshots.
type CellSnapshot struct {
	ShortDescription string
	Code             string
}

// SyncContext carries everything one sync needs. All fields are inputs;
// none are mutated by the engine or by providers.
type SyncContext struct {
	// NewContent is the representation being synced from.
	NewContent string

	// PreviousContent is the last-synced value of the source
	// representation, when one exists. A difference between
	// PreviousContent and NewContent selects incremental code updates.
	PreviousContent string

	// ExistingCounterpart is the current content of the target
	// representation, when it already has content.
	ExistingCounterpart string

	// CellsBefore and CellsAfter are sibling cells in execution order.
	CellsBefore []CellSnapshot
	CellsAfter  []CellSnapshot

	// ProposedSymbols are names the generated code must define. When
	// empty, #mentions extracted from NewContent are used instead.
	ProposedSymbols []string
}

// SymbolKind classifies what a generated symbol is.
type SymbolKind string

// Symbol kinds recognized in provider responses. Entries with any other
// kind are dropped during parsing.
const (
	SymbolVariable SymbolKind = "variable"
	SymbolFunction SymbolKind = "function"
)

// SymbolInfo describes a variable or function the generated code defines.
// It feeds downstream autocomplete and is never used for correctness
// checking.
type SymbolInfo struct {
	Name        string     `json:"name"`
	Kind        SymbolKind `json:"kind"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
}

// SyncResult is the outcome of one sync. On failure only Success and Err
// are meaningful; the orchestrator preserves prior cell state.
type SyncResult struct {
	Success         bool
	Result          string
	Symbols         []SymbolInfo
	NotebookSymbols []SymbolInfo
	Err             error
}

// failure wraps an error into an unsuccessful result.
func failure(err error) SyncResult {
	return SyncResult{Err: err}
}
