package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

const validConfig = `{"database": {"host": "localhost", "user": "ww", "database": "wwdtm"}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestImporter(connector *mockConnector, logger latlong.Logger) (*ImportService, *latlong.DatabaseConfig) {
	var seen latlong.DatabaseConfig
	factory := func(cfg latlong.DatabaseConfig) (latlong.Connector, error) {
		seen = cfg
		return connector, nil
	}
	return NewImportService(factory, logger), &seen
}

func TestImport_UpdatesEligibleRecords(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", validConfig)
	csvPath := writeFile(t, dir, "locations.csv", "locationid,latitude,longitude\n1,,-10.5\n2,5.0,6.0\n")

	updater := &mockUpdater{}
	connector := &mockConnector{updater: updater}
	svc, seen := newTestImporter(connector, &recordingLogger{})

	result, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: csvPath, ConfigPath: cfgPath})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []updateCall{{id: 2, latitude: "5", longitude: "6"}}, updater.calls)
	assert.True(t, updater.closed, "connection must be closed")
	assert.Equal(t, true, (*seen)[latlong.ConfigKeyAutocommit])
}

func TestImport_InvalidConfigStopsBeforeCSVAndConnection(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{"server": {}}`)

	connector := &mockConnector{updater: &mockUpdater{}}
	logger := &recordingLogger{}
	svc, _ := newTestImporter(connector, logger)

	csvRead := false
	svc.readCSV = func(string) ([]latlong.LocationRecord, error) {
		csvRead = true
		return nil, nil
	}

	_, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: "unused.csv", ConfigPath: cfgPath})
	require.Error(t, err)

	assert.True(t, errors.Is(err, latlong.ErrInvalidConfig))
	assert.Equal(t, latlong.ExitConfigError, latlong.ExitCodeForError(err))
	assert.False(t, csvRead, "CSV must not be read with an invalid configuration")
	assert.Zero(t, connector.calls)
	assert.Equal(t, []string{"Database configuration file is not valid."}, logger.errors)
}

func TestImport_EmptyCSVDoesNotConnect(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", validConfig)
	csvPath := writeFile(t, dir, "locations.csv", "locationid,latitude,longitude\n")

	connector := &mockConnector{updater: &mockUpdater{}}
	logger := &recordingLogger{}
	svc, _ := newTestImporter(connector, logger)

	result, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: csvPath, ConfigPath: cfgPath})
	require.NoError(t, err)

	assert.Equal(t, latlong.UpdateResult{}, result)
	assert.Zero(t, connector.calls)
	assert.Equal(t, []string{"No locations found in CSV file. Exiting."}, logger.info)
}

func TestImport_CSVErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", validConfig)
	csvPath := writeFile(t, dir, "locations.csv", "locationid,latitude,longitude\n1,2,3\nnope,4,5\n")

	connector := &mockConnector{updater: &mockUpdater{}}
	svc, _ := newTestImporter(connector, &recordingLogger{})

	_, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: csvPath, ConfigPath: cfgPath})
	require.Error(t, err)

	assert.True(t, errors.Is(err, latlong.ErrInvalidInput))
	assert.Zero(t, connector.calls, "no partial batch on parse failure")
}

func TestImport_MissingCSVFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", validConfig)

	svc, _ := newTestImporter(&mockConnector{updater: &mockUpdater{}}, &recordingLogger{})

	_, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: filepath.Join(dir, "none.csv"), ConfigPath: cfgPath})
	require.Error(t, err)
	assert.NotEqual(t, latlong.ExitSuccess, latlong.ExitCodeForError(err))
}

func TestImport_ConnectionFailure(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", validConfig)
	csvPath := writeFile(t, dir, "locations.csv", "locationid,latitude,longitude\n1,2,3\n")

	connErr := errors.Join(errors.New("dial tcp: connection refused"), latlong.ErrConnectionFailed)
	svc, _ := newTestImporter(&mockConnector{err: connErr}, &recordingLogger{})

	_, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: csvPath, ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Equal(t, latlong.ExitConnectionError, latlong.ExitCodeForError(err))
}

func TestImport_ConnectorFactoryFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{"database": {"driver": "oracle"}}`)
	csvPath := writeFile(t, dir, "locations.csv", "locationid,latitude,longitude\n1,2,3\n")

	factory := func(cfg latlong.DatabaseConfig) (latlong.Connector, error) {
		return nil, errors.Join(errors.New("unsupported driver"), latlong.ErrInvalidConfig)
	}
	svc := NewImportService(factory, &recordingLogger{})

	_, err := svc.Import(context.Background(), latlong.ImportConfig{CSVPath: csvPath, ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create connector")
}

func TestImport_MissingCSVFlag(t *testing.T) {
	svc, _ := newTestImporter(&mockConnector{}, &recordingLogger{})

	_, err := svc.Import(context.Background(), latlong.ImportConfig{ConfigPath: "config.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}

func TestNewImportService_PanicsOnNilDependencies(t *testing.T) {
	factory := func(latlong.DatabaseConfig) (latlong.Connector, error) { return nil, nil }

	assert.Panics(t, func() { NewImportService(nil, &recordingLogger{}) })
	assert.Panics(t, func() { NewImportService(factory, nil) })
}
