package models

import "time"

// MLoadStats describes the input file a snapshot was built from.
type MLoadStats struct {
	Source         string    `json:"source"`
	Fingerprint    string    `json:"fingerprint"`
	Rows           int       `json:"rows"`
	Counters       int       `json:"counters"`
	RejectedCells  int       `json:"rejected_cells"`
	FirstTimestamp string    `json:"first_timestamp,omitempty"`
	LastTimestamp  string    `json:"last_timestamp,omitempty"`
	LoadedAt       time.Time `json:"loaded_at"`
}
