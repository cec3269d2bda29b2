package latlong

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success (including an empty CSV file)
//   - 1: Invalid database configuration
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed, or nothing to import
	ExitConfigError     = 1  // Invalid or unreadable configuration file
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitGeneralError    = 4  // Unknown or unclassified error
	ExitInputError      = 10 // CSV file unreadable or malformed
	ExitConnectionError = 11 // Failed to connect to database
	ExitExecutionFailed = 13 // UPDATE statement failed
)

const (
	// DefaultConfigFile is the configuration file read when --config is not given.
	// Relative paths are resolved against the current working directory.
	DefaultConfigFile = "config.json"

	// LocationsTable is the table receiving coordinate updates.
	LocationsTable = "ww_locations"

	// CSV columns read by the parser. Other columns are ignored.
	ColumnLocationID = "locationid"
	ColumnLatitude   = "latitude"
	ColumnLongitude  = "longitude"

	// ConfigDatabaseKey is the top-level key holding the connection mapping.
	ConfigDatabaseKey = "database"

	// Keys inside the connection mapping with special meaning to the tool.
	ConfigKeyAutocommit = "autocommit"
	ConfigKeyDriver     = "driver"

	// Supported values of the driver key. MySQL is the default.
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	// DefaultMySQLPort and DefaultPostgresPort are used when the mapping has no port.
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
)
