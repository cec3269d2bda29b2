package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

// updateTemplate is the single statement this tool issues, with the
// driver's placeholder syntax filled in.
const updateTemplate = "UPDATE " + latlong.LocationsTable + " SET latitude = %s, longitude = %s WHERE locationid = %s"

// knownKeys are the connection mapping keys read by at least one connector.
var knownKeys = map[string]bool{
	latlong.ConfigKeyDriver:     true,
	latlong.ConfigKeyAutocommit: true,
	"host":                      true,
	"port":                      true,
	"user":                      true,
	"username":                  true,
	"password":                  true,
	"passwd":                    true,
	"database":                  true,
	"db":                        true,
	"unix_socket":               true,
	"charset":                   true,
	"collation":                 true,
	"connection_timeout":        true,
	"connect_timeout":           true,
	"sslmode":                   true,
	"application_name":          true,
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the configuration's driver key.
func NewConnector(cfg latlong.DatabaseConfig) (latlong.Connector, error) {
	switch driver := cfg.Driver(); driver {
	case latlong.DriverMySQL:
		c, err := NewMySQLConnector(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case latlong.DriverPostgres:
		c, err := NewPostgresConnector(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use %q or %q): %w",
			driver, latlong.DriverMySQL, latlong.DriverPostgres, latlong.ErrInvalidConfig)
	}
}

// UnusedKeys returns the sorted configuration keys no connector reads.
func UnusedKeys(cfg latlong.DatabaseConfig) []string {
	var unused []string
	for k := range cfg {
		if !knownKeys[k] {
			unused = append(unused, k)
		}
	}
	sort.Strings(unused)
	return unused
}

// wrapConnectionError wraps raw driver connection errors with actionable guidance.
// The result matches both latlong.ErrConnectionFailed and the original error.
func wrapConnectionError(err error, driver, addr, database string) error {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - The %s server is not running
  - Wrong host or port in the configuration file
  - Firewall blocking the connection

Original error: %w: %w`, addr, driver, latlong.ErrConnectionFailed, err)

	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf(`cannot resolve host of %s

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w: %w`, addr, latlong.ErrConnectionFailed, err)

	case strings.Contains(errStr, "access denied") || strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`authentication failed for database "%s"

Possible causes:
  - Wrong user or password in the configuration file
  - User does not have access to the database

Original error: %w: %w`, database, latlong.ErrConnectionFailed, err)

	case strings.Contains(errStr, "unknown database") || strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

Original error: %w: %w`, database, latlong.ErrConnectionFailed, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w: %w`, addr, latlong.ErrConnectionFailed, err)

	default:
		return fmt.Errorf("failed to connect to %s database at %s: %w: %w", driver, addr, latlong.ErrConnectionFailed, err)
	}
}
