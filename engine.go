package trisync

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
)

// Engine is the sync orchestrator a notebook controller talks to. It holds
// exactly one active Provider (swappable) and the per-cell state machine:
// clean, dirty, syncing. At most one sync is in flight per cell; syncs for
// different cells run independently.
type Engine struct {
	providerMu sync.RWMutex
	provider   Provider

	cellsMu sync.Mutex
	cells   map[string]*cellState
}

// NewEngine creates an engine bound to a provider.
func NewEngine(provider Provider) *Engine {
	return &Engine{
		provider: provider,
		cells:    make(map[string]*cellState),
	}
}

// SetProvider swaps the active provider. In-flight syncs finish on the
// provider they started with.
func (e *Engine) SetProvider(provider Provider) {
	e.providerMu.Lock()
	defer e.providerMu.Unlock()
	e.provider = provider
}

// Provider returns the active provider.
func (e *Engine) Provider() Provider {
	e.providerMu.RLock()
	defer e.providerMu.RUnlock()
	return e.provider
}

// cell returns the state for id, creating it on first use.
func (e *Engine) cell(id string) *cellState {
	e.cellsMu.Lock()
	defer e.cellsMu.Unlock()

	cs, ok := e.cells[id]
	if !ok {
		cs = &cellState{lastEdited: TabShort}
		e.cells[id] = cs
	}
	return cs
}

// Cell returns a copy of the cell's current state.
func (e *Engine) Cell(id string) CellView {
	cs := e.cell(id)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return CellView{
		Short:      cs.short,
		Detailed:   cs.detailed,
		Code:       cs.code,
		Dirty:      cs.dirty,
		LastEdited: cs.lastEdited,
		Syncing:    cs.syncing,
		Parameters: ExtractParameters(cs.short).Parameters,
	}
}

// Edit records a user edit to one representation: the cell goes dirty and
// remembers which tab changed.
func (e *Engine) Edit(id string, tab Tab, text string) {
	cs := e.cell(id)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.setText(tab, text)
	cs.dirty = true
	cs.lastEdited = tab
}

// UpdateContext replaces the caller-owned surroundings of a cell. Snapshots
// are read-only to the engine.
func (e *Engine) UpdateContext(id string, cc CellContext) {
	cs := e.cell(id)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.context = cc
}

// ApplyParameterEdit substitutes {{name:oldValue}} with {{name:newValue}}
// in all three representations and their last-synced snapshots. It bypasses
// the state machine entirely: no dirty flag, no provider call.
func (e *Engine) ApplyParameterEdit(id, name, oldValue, newValue string) {
	cs := e.cell(id)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.short = ReinsertParameter(cs.short, name, oldValue, newValue)
	cs.detailed = ReinsertParameter(cs.detailed, name, oldValue, newValue)
	cs.code = ReinsertParameter(cs.code, name, oldValue, newValue)
	cs.lastShort = ReinsertParameter(cs.lastShort, name, oldValue, newValue)
	cs.lastDetailed = ReinsertParameter(cs.lastDetailed, name, oldValue, newValue)
	cs.lastCode = ReinsertParameter(cs.lastCode, name, oldValue, newValue)
}

// Sync executes one direction-general sync against the active provider,
// with no cell state involved. The three-representation flow in SyncCell is
// built on it.
func (e *Engine) Sync(ctx context.Context, direction Direction, sc SyncContext) SyncResult {
	return e.Provider().Sync(ctx, direction, sc)
}

// SyncCell propagates the dirty representation of a cell into the other
// two. A clean cell is a no-op. If a sync is already in flight for the
// cell, the request is queued and runs when the in-flight one resolves; a
// newer request supersedes a queued one. On failure nothing is overwritten
// and the cell stays dirty so the user can retry.
func (e *Engine) SyncCell(ctx context.Context, id string) error {
	cs := e.cell(id)

	cs.mu.Lock()
	if !cs.dirty {
		cs.mu.Unlock()
		return nil
	}
	if cs.syncing {
		cs.pending = &pendingSync{ctx: ctx}
		cs.mu.Unlock()
		return nil
	}
	cs.syncing = true
	cs.mu.Unlock()

	err := e.runSync(ctx, id, cs)

	for {
		cs.mu.Lock()
		queued := cs.pending
		cs.pending = nil
		if queued == nil || !cs.dirty {
			cs.syncing = false
			cs.mu.Unlock()
			return err
		}
		cs.mu.Unlock()

		// The queued request's own error surfaces through hooks; the
		// caller that queued it already returned.
		e.runSync(queued.ctx, id, cs)
	}
}

// runSync performs one full propagation from the cell's dirty tab. Both
// counterpart results are buffered and committed together, so a failure in
// either leaves the cell untouched.
func (e *Engine) runSync(ctx context.Context, id string, cs *cellState) error {
	cs.mu.Lock()
	source := cs.lastEdited
	sourceText := cs.text(source)
	previous := cs.lastSynced(source)
	targets := counterparts(source)
	existing := [2]string{cs.text(targets[0]), cs.text(targets[1])}
	cc := cs.context
	cs.mu.Unlock()

	provider := e.Provider()

	capitan.Info(ctx, SyncStarted,
		CellKey.Field(id),
		ProviderKey.Field(provider.Name()),
	)

	var results [2]SyncResult
	for i, target := range targets {
		direction := directionFor(source, target)
		sc := SyncContext{
			NewContent:          sourceText,
			PreviousContent:     previous,
			ExistingCounterpart: existing[i],
			CellsBefore:         cc.Before,
			CellsAfter:          cc.After,
			ProposedSymbols:     cc.ProposedSymbols,
		}

		results[i] = provider.Sync(ctx, direction, sc)
		if !results[i].Success {
			err := results[i].Err
			if err == nil {
				err = fmt.Errorf("%s sync returned no result", direction)
			}
			capitan.Error(ctx, SyncFailed,
				CellKey.Field(id),
				DirectionKey.Field(string(direction)),
				ErrorKey.Field(err.Error()),
			)
			return fmt.Errorf("cell %s: %w", id, err)
		}
	}

	cs.mu.Lock()
	clean := cs.text(source) == sourceText
	for i, target := range targets {
		// A counterpart the user edited mid-flight keeps the user's
		// text; overwriting it would drop the edit.
		if cs.text(target) != existing[i] {
			clean = false
			continue
		}
		cs.setText(target, results[i].Result)
		cs.setLastSynced(target, results[i].Result)
	}
	cs.setLastSynced(source, sourceText)

	// Any edit that landed mid-flight keeps the cell dirty.
	cs.dirty = !clean
	cs.mu.Unlock()

	capitan.Info(ctx, SyncCompleted,
		CellKey.Field(id),
		ProviderKey.Field(provider.Name()),
	)
	return nil
}

// FullSyncResult is the output of the legacy single-shot workflow.
type FullSyncResult struct {
	Instructions string
	Parameters   []Parameter
	Code         string

	Symbols         []SymbolInfo
	NotebookSymbols []SymbolInfo

	// Regenerated is the instruction text derived back from the
	// generated code, for display alongside it.
	Regenerated string
}

// ProcessPrompt rewrites a free-form user prompt into a terse,
// parameterized instruction.
func (e *Engine) ProcessPrompt(ctx context.Context, prompt string) SyncResult {
	return e.Sync(ctx, DirectionShorten, SyncContext{NewContent: prompt})
}

// GenerateCode generates code from an instruction context.
func (e *Engine) GenerateCode(ctx context.Context, sc SyncContext) SyncResult {
	return e.Sync(ctx, DirectionToCode, sc)
}

// ReverseEngineer derives a parameterized instruction from code.
func (e *Engine) ReverseEngineer(ctx context.Context, code string) SyncResult {
	return e.Sync(ctx, DirectionToInstructions, SyncContext{NewContent: code})
}

// FullSync runs the legacy single-shot chain: prompt to instructions,
// instructions to code, code back to instructions. The first failing step
// aborts the chain.
func (e *Engine) FullSync(ctx context.Context, prompt string) (*FullSyncResult, error) {
	processed := e.ProcessPrompt(ctx, prompt)
	if !processed.Success {
		return nil, fmt.Errorf("process prompt: %w", processed.Err)
	}
	instructions := processed.Result

	generated := e.GenerateCode(ctx, SyncContext{NewContent: instructions})
	if !generated.Success {
		return nil, fmt.Errorf("generate code: %w", generated.Err)
	}

	reversed := e.Sync(ctx, DirectionToInstructions, SyncContext{
		NewContent:          generated.Result,
		ExistingCounterpart: instructions,
	})
	if !reversed.Success {
		return nil, fmt.Errorf("reverse engineer: %w", reversed.Err)
	}

	return &FullSyncResult{
		Instructions:    instructions,
		Parameters:      ExtractParameters(instructions).Parameters,
		Code:            generated.Result,
		Symbols:         generated.Symbols,
		NotebookSymbols: generated.NotebookSymbols,
		Regenerated:     reversed.Result,
	}, nil
}
