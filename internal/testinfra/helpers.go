package testinfra

import (
	"context"
	"sync"
	"testing"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

type sharedDatabase struct {
	once sync.Once
	db   *Database
	err  error
}

var (
	sharedPostgres sharedDatabase
	sharedMySQL    sharedDatabase
)

func (s *sharedDatabase) get(start func(context.Context) (*Database, error)) (*Database, error) {
	s.once.Do(func() {
		s.db, s.err = start(context.Background())
	})
	return s.db, s.err
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequirePostgres returns a connection mapping for a shared PostgreSQL container.
// Skips the test in short mode or when Docker is unavailable.
func RequirePostgres(t *testing.T) latlong.DatabaseConfig {
	t.Helper()
	return require(t, &sharedPostgres, StartPostgres)
}

// RequireMySQL returns a connection mapping for a shared MySQL container.
// Skips the test in short mode or when Docker is unavailable.
func RequireMySQL(t *testing.T) latlong.DatabaseConfig {
	t.Helper()
	return require(t, &sharedMySQL, StartMySQL)
}

func require(t *testing.T, shared *sharedDatabase, start func(context.Context) (*Database, error)) latlong.DatabaseConfig {
	t.Helper()

	SkipIfShort(t)
	db, err := shared.get(start)
	if err != nil {
		t.Skipf("Docker unavailable: %v", err)
	}

	cfg := make(latlong.DatabaseConfig, len(db.Config))
	for k, v := range db.Config {
		cfg[k] = v
	}
	return cfg
}
