package trisync

import (
	"context"
	"sync"
)

// Tab names one of the three representations of a cell.
type Tab string

// The three representation tabs.
const (
	TabShort    Tab = "short"
	TabDetailed Tab = "detailed"
	TabCode     Tab = "code"
)

// CellContext is the caller-owned surroundings of a cell: sibling
// snapshots in execution order plus any symbols the generated code must
// define. The notebook layer refreshes it before triggering a sync.
type CellContext struct {
	Before          []CellSnapshot
	After           []CellSnapshot
	ProposedSymbols []string
}

// CellView is a copy of a cell's state, safe to retain and read.
type CellView struct {
	Short    string
	Detailed string
	Code     string

	Dirty      bool
	LastEdited Tab
	Syncing    bool

	// Parameters are extracted from the short representation on read.
	Parameters []Parameter
}

// cellState tracks one cell through the clean/dirty/syncing lifecycle.
// All access goes through the mutex; views are copies.
type cellState struct {
	mu sync.Mutex

	short    string
	detailed string
	code     string

	// Last-synced snapshots, the baseline for "did this change" diffing.
	lastShort    string
	lastDetailed string
	lastCode     string

	dirty      bool
	lastEdited Tab
	syncing    bool
	pending    *pendingSync

	context CellContext
}

// pendingSync holds a sync request that arrived while one was in flight.
// Only the newest is kept; an older queued request is superseded.
type pendingSync struct {
	ctx context.Context
}

// text returns the current content of a tab. Caller holds the lock.
func (cs *cellState) text(tab Tab) string {
	switch tab {
	case TabDetailed:
		return cs.detailed
	case TabCode:
		return cs.code
	default:
		return cs.short
	}
}

// lastSynced returns the last-synced snapshot of a tab. Caller holds the
// lock.
func (cs *cellState) lastSynced(tab Tab) string {
	switch tab {
	case TabDetailed:
		return cs.lastDetailed
	case TabCode:
		return cs.lastCode
	default:
		return cs.lastShort
	}
}

// setLastSynced updates the snapshot of a tab. Caller holds the lock.
func (cs *cellState) setLastSynced(tab Tab, text string) {
	switch tab {
	case TabDetailed:
		cs.lastDetailed = text
	case TabCode:
		cs.lastCode = text
	default:
		cs.lastShort = text
	}
}

// setText updates the current content of a tab. Caller holds the lock.
func (cs *cellState) setText(tab Tab, text string) {
	switch tab {
	case TabDetailed:
		cs.detailed = text
	case TabCode:
		cs.code = text
	default:
		cs.short = text
	}
}

// counterparts returns the two tabs a sync from tab propagates into.
func counterparts(tab Tab) [2]Tab {
	switch tab {
	case TabDetailed:
		return [2]Tab{TabShort, TabCode}
	case TabCode:
		return [2]Tab{TabShort, TabDetailed}
	default:
		return [2]Tab{TabDetailed, TabCode}
	}
}

// directionFor maps a source/target tab pair to its sync direction.
func directionFor(source, target Tab) Direction {
	switch source {
	case TabShort:
		if target == TabCode {
			return DirectionShortToCode
		}
		return DirectionShortToPseudo
	case TabDetailed:
		if target == TabCode {
			return DirectionPseudoToCode
		}
		return DirectionPseudoToShort
	default:
		if target == TabDetailed {
			return DirectionCodeToPseudo
		}
		return DirectionCodeToShort
	}
}
