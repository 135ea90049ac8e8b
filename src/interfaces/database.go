package interfaces

import "perfmon-dashboard/src/models"

// -----------------------------------------------------------------------------
// IArchive defines the contract for snapshot storage.
// -----------------------------------------------------------------------------

type IArchive interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot stores one snapshot, replacing any earlier copy with the
	// same fingerprint.
	SaveSnapshot(record models.MSnapshotRecord) error

	// -----------------------------------------------------------------------------

	// LoadSnapshot reads back a stored snapshot by fingerprint.
	LoadSnapshot(fingerprint string) (*models.MSnapshotRecord, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
