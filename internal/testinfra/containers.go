// Package testinfra starts throwaway databases for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

const (
	PostgresImage = "postgres:17-alpine"
	MySQLImage    = "mysql:8.4"

	DatabaseUser     = "waitwait"
	DatabasePassword = "waitwait"
	DatabaseName     = "wwdtm"
)

// Database is a running container plus the connection mapping that reaches it.
type Database struct {
	Container testcontainers.Container
	Config    latlong.DatabaseConfig
}

// Terminate stops and removes the container.
func (d *Database) Terminate(ctx context.Context) error {
	return d.Container.Terminate(ctx)
}

// StartPostgres runs a PostgreSQL container.
func StartPostgres(ctx context.Context) (*Database, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(DatabaseUser),
		postgres.WithPassword(DatabasePassword),
		postgres.WithDatabase(DatabaseName),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	cfg, err := mappingFor(ctx, ctr, port.Int(), latlong.DriverPostgres)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	cfg["sslmode"] = "disable"

	return &Database{Container: ctr, Config: cfg}, nil
}

// StartMySQL runs a MySQL container.
func StartMySQL(ctx context.Context) (*Database, error) {
	ctr, err := tcmysql.Run(ctx,
		MySQLImage,
		tcmysql.WithUsername(DatabaseUser),
		tcmysql.WithPassword(DatabasePassword),
		tcmysql.WithDatabase(DatabaseName),
	)
	if err != nil {
		return nil, fmt.Errorf("start mysql: %w", err)
	}

	port, err := ctr.MappedPort(ctx, "3306/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	cfg, err := mappingFor(ctx, ctr, port.Int(), latlong.DriverMySQL)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	return &Database{Container: ctr, Config: cfg}, nil
}

func mappingFor(ctx context.Context, ctr testcontainers.Container, port int, driver string) (latlong.DatabaseConfig, error) {
	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("get container host: %w", err)
	}

	return latlong.DatabaseConfig{
		latlong.ConfigKeyDriver:     driver,
		latlong.ConfigKeyAutocommit: true,
		"host":                      host,
		"port":                      port,
		"user":                      DatabaseUser,
		"password":                  DatabasePassword,
		"database":                  DatabaseName,
	}, nil
}
