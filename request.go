package trisync

// SyncRequest flows through the pipz pipeline. It is created fresh per
// sync; adapters never retain one across calls.
type SyncRequest struct {
	// Input fields
	Direction Direction
	Context   SyncContext
	Prompt    string // Rendered prompt text

	// Metadata fields
	RequestID    string
	ProviderName string

	// Output fields (populated by the terminal stage)
	Response string // Raw text response from the backend
}
