package locations

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_RoundTripExactDecimals(t *testing.T) {
	input := "locationid,latitude,longitude\n\"42\",\"47.6062\",\"-122.3321\"\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, int64(42), rec.ID)
	require.True(t, rec.Latitude.Valid)
	require.True(t, rec.Longitude.Valid)
	assert.True(t, rec.Latitude.Decimal.Equal(dec("47.6062")), "latitude = %s", rec.Latitude.Decimal)
	assert.True(t, rec.Longitude.Decimal.Equal(dec("-122.3321")), "longitude = %s", rec.Longitude.Decimal)
	assert.Equal(t, "47.6062", rec.Latitude.Decimal.String())
	assert.Equal(t, "-122.3321", rec.Longitude.Decimal.String())
	assert.Equal(t, 2, rec.Line)
}

func TestParse_PreservesPrecision(t *testing.T) {
	input := "locationid,latitude,longitude\n1,0.1234567890123456789,-179.999999\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "0.1234567890123456789", records[0].Latitude.Decimal.String())
	assert.Equal(t, "-179.999999", records[0].Longitude.Decimal.String())
}

func TestParse_BlankCoordinatesAreAbsent(t *testing.T) {
	input := "locationid,latitude,longitude\n" +
		"1,,-10.5\n" +
		"2,5.0,6.0\n" +
		"3,  ,\t\n" +
		"4,12.5,\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.False(t, records[0].Latitude.Valid)
	assert.True(t, records[0].Longitude.Valid)
	assert.False(t, records[0].Eligible())

	assert.True(t, records[1].Eligible())
	assert.True(t, records[1].Latitude.Decimal.Equal(dec("5")))
	assert.True(t, records[1].Longitude.Decimal.Equal(dec("6")))

	assert.False(t, records[2].Latitude.Valid)
	assert.False(t, records[2].Longitude.Valid)

	assert.True(t, records[3].Latitude.Valid)
	assert.False(t, records[3].Longitude.Valid)
}

func TestParse_PreservesFileOrderWithoutDedup(t *testing.T) {
	input := "locationid,latitude,longitude\n9,1,1\n3,2,2\n9,3,3\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{9, 3, 9}, ids)
}

func TestParse_HeaderColumnsByName(t *testing.T) {
	input := "city,longitude,state,latitude,locationid\n" +
		"Seattle,-122.3321,WA,47.6062,42\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, int64(42), records[0].ID)
	assert.Equal(t, "47.6062", records[0].Latitude.Decimal.String())
	assert.Equal(t, "-122.3321", records[0].Longitude.Decimal.String())
}

func TestParse_IDWithSurroundingWhitespace(t *testing.T) {
	records, err := Parse(strings.NewReader("locationid,latitude,longitude\n 17 ,1,2\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(17), records[0].ID)
}

func TestParse_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"header only", "locationid,latitude,longitude\n"},
		{"header and blank lines", "locationid,latitude,longitude\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestParse_ByteOrderMark(t *testing.T) {
	records, err := Parse(strings.NewReader("\ufefflocationid,latitude,longitude\n1,2,3\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
}

func TestParse_FatalErrors(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantContains string
	}{
		{"non numeric id", "locationid,latitude,longitude\nabc,1,2\n", `invalid locationid "abc"`},
		{"blank id", "locationid,latitude,longitude\n,1,2\n", "invalid locationid"},
		{"fractional id", "locationid,latitude,longitude\n1.5,1,2\n", "invalid locationid"},
		{"bad latitude", "locationid,latitude,longitude\n1,north,2\n", "invalid latitude"},
		{"bad longitude", "locationid,latitude,longitude\n1,2,west\n", "invalid longitude"},
		{"missing column", "locationid,latitude\n1,2\n", "longitude"},
		{"short row", "locationid,latitude,longitude\n1,2\n", "missing longitude field"},
		{"bad quoting", "locationid,latitude,longitude\n1,\"2,3\n", "failed to read record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.Is(err, latlong.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)
			assert.Contains(t, err.Error(), tt.wantContains)
		})
	}
}

func TestParse_ErrorReportsLine(t *testing.T) {
	input := "locationid,latitude,longitude\n1,2,3\n2,3,4\nx,5,6\n"

	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, os.WriteFile(path, []byte("locationid,latitude,longitude\n1,,-10.5\n2,5.0,6.0\n"), 0644))

	records, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
}

func TestReadCSV_FileNotFound(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, latlong.ErrInvalidInput))
}

func TestParseCoordinate(t *testing.T) {
	got, err := ParseCoordinate(" -33.8688 ")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, "-33.8688", got.Decimal.String())

	got, err = ParseCoordinate("   ")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	got, err = ParseCoordinate("0")
	require.NoError(t, err)
	assert.True(t, got.Valid, "zero is a present coordinate")

	_, err = ParseCoordinate("12,5")
	assert.True(t, errors.Is(err, latlong.ErrInvalidInput))
}
