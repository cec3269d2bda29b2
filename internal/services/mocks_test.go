package services

import (
	"context"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

type updateCall struct {
	id        int64
	latitude  string
	longitude string
}

type mockUpdater struct {
	calls    []updateCall
	failOnID int64
	err      error
	closed   bool
}

func (m *mockUpdater) UpdateLocation(_ context.Context, rec latlong.LocationRecord) error {
	if m.err != nil && rec.ID == m.failOnID {
		return m.err
	}
	m.calls = append(m.calls, updateCall{
		id:        rec.ID,
		latitude:  rec.Latitude.Decimal.String(),
		longitude: rec.Longitude.Decimal.String(),
	})
	return nil
}

func (m *mockUpdater) Close() error {
	m.closed = true
	return nil
}

type mockConnector struct {
	updater *mockUpdater
	err     error
	calls   int
}

func (m *mockConnector) Connect(_ context.Context) (latlong.LocationUpdater, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.updater, nil
}

// recordingLogger keeps messages so tests can assert on what was reported.
type recordingLogger struct {
	verbose []string
	info    []string
	errors  []string
}

func (l *recordingLogger) Verbose(format string, _ ...interface{}) { l.verbose = append(l.verbose, format) }
func (l *recordingLogger) Info(format string, _ ...interface{})    { l.info = append(l.info, format) }
func (l *recordingLogger) Error(format string, _ ...interface{})   { l.errors = append(l.errors, format) }
