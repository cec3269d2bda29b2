package latlong

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ImportConfig contains all parameters needed for an import run.
type ImportConfig struct {
	// CSVPath is the CSV file containing locationid, latitude and longitude columns
	CSVPath string

	// ConfigPath is the JSON (or YAML) file holding the database mapping
	ConfigPath string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ImportConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.CSVPath == "" {
		errs = append(errs, errors.New("CSV file is required (use --file)"))
	}

	if c.ConfigPath == "" {
		errs = append(errs, fmt.Errorf("ConfigPath is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LocationRecord is one CSV row: a location id with optional coordinates.
type LocationRecord struct {
	// ID references ww_locations.locationid
	ID int64

	// Latitude is absent when the CSV field is blank
	Latitude decimal.NullDecimal

	// Longitude is absent when the CSV field is blank
	Longitude decimal.NullDecimal

	// Line is the 1-based line of the row in the source file
	Line int
}

// Eligible reports whether both coordinates are present.
// Only eligible records are written to the database. A zero coordinate is present.
func (r LocationRecord) Eligible() bool {
	return r.Latitude.Valid && r.Longitude.Valid
}

// UpdateResult summarizes an update run.
type UpdateResult struct {
	// Updated counts executed UPDATE statements, matched or not
	Updated int

	// Skipped counts records missing a coordinate
	Skipped int

	// SkippedIDs lists skipped location ids in input order
	SkippedIDs []int64
}

// DatabaseConfig is the connection mapping read from the configuration file.
// Keys follow the MySQL connector conventions (host, port, user, password,
// database) plus autocommit and the optional driver selector.
type DatabaseConfig map[string]any

// Driver returns the normalized driver name, DriverMySQL when unset.
// Unknown names are returned lowercased for the caller to reject.
func (c DatabaseConfig) Driver() string {
	d := strings.ToLower(strings.TrimSpace(c.String(ConfigKeyDriver)))
	switch d {
	case "", "mysql", "mariadb":
		return DriverMySQL
	case "postgres", "postgresql", "pgx":
		return DriverPostgres
	}
	return d
}

// String returns the first non-empty value among keys, formatted as a string.
// Aliases let both "user" and "username" (or "database" and "db") work.
func (c DatabaseConfig) String(keys ...string) string {
	for _, key := range keys {
		v, ok := c[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			s = fmt.Sprint(val)
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// Int returns the integer value of key, or 0 when the key is absent.
// JSON numbers, YAML integers and numeric strings are accepted.
func (c DatabaseConfig) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return 0, nil
	}

	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%s: %v is not an integer: %w", key, val, ErrInvalidConfig)
		}
		return int(val), nil
	case json.Number:
		n, err := strconv.Atoi(val.String())
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer: %w", key, val.String(), ErrInvalidConfig)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer: %w", key, val, ErrInvalidConfig)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s: unsupported value type %T: %w", key, v, ErrInvalidConfig)
}

// Autocommit reports the effective autocommit setting.
func (c DatabaseConfig) Autocommit() bool {
	return !IsFalsy(c[ConfigKeyAutocommit])
}

// IsFalsy reports whether a decoded configuration value counts as false:
// nil, false, numeric zero, the empty string, or an empty collection.
// Any other string, including "false", is truthy.
func IsFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case uint64:
		return val == 0
	case float64:
		return val == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
