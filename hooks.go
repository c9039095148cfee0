package trisync

import "github.com/zoobzio/capitan"

// Signals for hook events.
const (
	SyncStarted           = capitan.Signal("sync.request.started")
	SyncCompleted         = capitan.Signal("sync.request.completed")
	SyncFailed            = capitan.Signal("sync.request.failed")
	ProviderCallStarted   = capitan.Signal("sync.provider.call.started")
	ProviderCallCompleted = capitan.Signal("sync.provider.call.completed")
	ProviderCallFailed    = capitan.Signal("sync.provider.call.failed")
	ParseFellBack         = capitan.Signal("sync.response.fallback")
)

// Keys for hook event fields.
var (
	// Request identification.
	RequestIDKey = capitan.NewStringKey("sync.request.id")
	DirectionKey = capitan.NewStringKey("sync.direction")
	CellKey      = capitan.NewStringKey("sync.cell.id")

	// Input/output data.
	InputKey    = capitan.NewStringKey("sync.input")
	ResultKey   = capitan.NewStringKey("sync.result")
	ResponseKey = capitan.NewStringKey("sync.response")

	// Error information.
	ErrorKey = capitan.NewStringKey("sync.error")

	// Provider information.
	ProviderKey = capitan.NewStringKey("sync.provider")
	ModelKey    = capitan.NewStringKey("sync.model")

	// Parse metadata.
	StrategyKey    = capitan.NewStringKey("sync.parse.strategy")
	SymbolCountKey = capitan.NewIntKey("sync.symbol.count")

	// Provider metrics.
	DurationMsKey     = capitan.NewIntKey("sync.duration.ms")
	HTTPStatusCodeKey = capitan.NewIntKey("sync.http.status.code")
	ExitCodeKey       = capitan.NewIntKey("sync.exit.code")
)
