package models

// MSnapshotRecord is the storable form of a loaded snapshot.
type MSnapshotRecord struct {
	Stats      MLoadStats         `json:"stats"`
	Counters   []MCounterSummary  `json:"counters"`
	Categories []MCategorySummary `json:"categories"`
}
