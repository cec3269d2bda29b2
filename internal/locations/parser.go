package locations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

const utf8BOM = "\ufeff"

// ReadCSV opens path and parses every data row into a LocationRecord.
func ReadCSV(path string) ([]latlong.LocationRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v: %w", err, latlong.ErrInvalidInput)
	}
	defer file.Close()

	records, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads CSV data with a header row and returns the records in file order.
// An empty input or a header without data rows yields an empty slice.
func Parse(r io.Reader) ([]latlong.LocationRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows are matched to the header by column name

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %v: %w", err, latlong.ErrInvalidInput)
	}

	cols, err := newColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []latlong.LocationRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %v: %w", err, latlong.ErrInvalidInput)
		}

		line, _ := reader.FieldPos(0)
		rec, err := cols.parseRow(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// columnIndex maps the required columns to their header positions.
type columnIndex struct {
	id, lat, lon int
}

func newColumnIndex(header []string) (columnIndex, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := positions[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	cols := columnIndex{
		id:  lookup(latlong.ColumnLocationID),
		lat: lookup(latlong.ColumnLatitude),
		lon: lookup(latlong.ColumnLongitude),
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("header is missing column(s) %s: %w",
			strings.Join(missing, ", "), latlong.ErrInvalidInput)
	}
	return cols, nil
}

func (c columnIndex) parseRow(row []string, line int) (latlong.LocationRecord, error) {
	field := func(i int, name string) (string, error) {
		if i >= len(row) {
			return "", fmt.Errorf("line %d: missing %s field: %w", line, name, latlong.ErrInvalidInput)
		}
		return row[i], nil
	}

	rawID, err := field(c.id, latlong.ColumnLocationID)
	if err != nil {
		return latlong.LocationRecord{}, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return latlong.LocationRecord{}, fmt.Errorf("line %d: invalid %s %q: %w",
			line, latlong.ColumnLocationID, rawID, latlong.ErrInvalidInput)
	}

	rawLat, err := field(c.lat, latlong.ColumnLatitude)
	if err != nil {
		return latlong.LocationRecord{}, err
	}
	lat, err := ParseCoordinate(rawLat)
	if err != nil {
		return latlong.LocationRecord{}, fmt.Errorf("line %d: invalid %s: %w", line, latlong.ColumnLatitude, err)
	}

	rawLon, err := field(c.lon, latlong.ColumnLongitude)
	if err != nil {
		return latlong.LocationRecord{}, err
	}
	lon, err := ParseCoordinate(rawLon)
	if err != nil {
		return latlong.LocationRecord{}, fmt.Errorf("line %d: invalid %s: %w", line, latlong.ColumnLongitude, err)
	}

	return latlong.LocationRecord{
		ID:        id,
		Latitude:  lat,
		Longitude: lon,
		Line:      line,
	}, nil
}

// ParseCoordinate converts a CSV field to an exact decimal.
// Blank or whitespace-only fields yield an absent (invalid) NullDecimal.
func ParseCoordinate(s string) (decimal.NullDecimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%q is not a decimal number: %w", s, latlong.ErrInvalidInput)
	}
	return decimal.NewNullDecimal(d), nil
}
