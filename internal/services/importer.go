package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/wwlatlong/internal/config"
	"github.com/vvka-141/wwlatlong/internal/locations"
	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

// ImportService runs the whole pipeline: configuration, CSV, connection, updates.
// Thread-Safety: NOT safe for concurrent Import() calls on the same instance.
type ImportService struct {
	connectorFactory latlong.ConnectorFactory
	logger           latlong.Logger
	loadConfig       func(path string) (latlong.DatabaseConfig, error)
	readCSV          func(path string) ([]latlong.LocationRecord, error)
}

// NewImportService creates an ImportService with its dependencies injected.
// Panics on nil dependencies: these are programmer errors.
func NewImportService(connectorFactory latlong.ConnectorFactory, logger latlong.Logger) *ImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &ImportService{
		connectorFactory: connectorFactory,
		logger:           logger,
		loadConfig:       config.Load,
		readCSV:          locations.ReadCSV,
	}
}

// Import loads the configuration, parses the CSV and applies the updates.
//
// The configuration is checked before the CSV is read, and the database is
// contacted only when the CSV holds at least one record. An empty CSV returns
// a zero result and no error.
func (s *ImportService) Import(ctx context.Context, cfg latlong.ImportConfig) (latlong.UpdateResult, error) {
	if err := cfg.Validate(); err != nil {
		return latlong.UpdateResult{}, err
	}

	dbConfig, err := s.loadConfig(cfg.ConfigPath)
	if err != nil {
		s.logger.Error("Database configuration file is not valid.")
		return latlong.UpdateResult{}, err
	}
	s.logger.Verbose("Loaded %s configuration from %s", dbConfig.Driver(), cfg.ConfigPath)

	records, err := s.readCSV(cfg.CSVPath)
	if err != nil {
		return latlong.UpdateResult{}, err
	}

	if len(records) == 0 {
		s.logger.Info("No locations found in CSV file. Exiting.")
		return latlong.UpdateResult{}, nil
	}
	s.logger.Verbose("Parsed %d location(s) from %s", len(records), cfg.CSVPath)

	connector, err := s.connectorFactory(dbConfig)
	if err != nil {
		return latlong.UpdateResult{}, fmt.Errorf("failed to create connector: %w", err)
	}

	updater, err := connector.Connect(ctx)
	if err != nil {
		return latlong.UpdateResult{}, err
	}
	defer func() {
		if cerr := updater.Close(); cerr != nil {
			s.logger.Verbose("Closing database connection: %v", cerr)
		}
	}()

	return ApplyUpdates(ctx, records, updater, s.logger)
}
