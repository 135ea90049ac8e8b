package interfaces

import "context"

// -----------------------------------------------------------------------------
// IDataExchanger is a listener that serves the loaded snapshot (HTTP, gRPC).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Start blocks serving until the listener fails or Stop is called.
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
