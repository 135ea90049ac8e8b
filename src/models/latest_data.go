package models

// -----------------------------------------------------------------------------
// WebSocket payloads
// -----------------------------------------------------------------------------

type MDashboardMessage struct {
	Type        string                        `json:"type"` // "INITIAL", "CATEGORY" or "ERROR"
	Source      string                        `json:"source"`
	Fingerprint string                        `json:"fingerprint"`
	Counters    []MCounterSummary             `json:"counters"`
	Categories  map[Category]MCategorySummary `json:"categories"`
	Timestamp   int64                         `json:"timestamp"`
	Error       string                        `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command  string `json:"command"`
	Category string `json:"category"`
}
