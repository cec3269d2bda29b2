package latlong

import "context"

// LocationUpdater writes coordinates for a single location.
// Each call executes one UPDATE statement; there is no batching and no
// enclosing transaction.
type LocationUpdater interface {
	// UpdateLocation sets latitude and longitude of the row keyed by record.ID.
	// A record without a matching row is not an error.
	UpdateLocation(ctx context.Context, record LocationRecord) error

	// Close releases the underlying connection.
	Close() error
}

// Connector opens a LocationUpdater for a configured database.
// Different implementations handle the supported drivers.
type Connector interface {
	Connect(ctx context.Context) (LocationUpdater, error)
}

// ConnectorFactory creates the Connector matching a database configuration.
type ConnectorFactory func(cfg DatabaseConfig) (Connector, error)
