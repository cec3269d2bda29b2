package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/wwlatlong/internal/db"
	"github.com/vvka-141/wwlatlong/internal/logging"
	"github.com/vvka-141/wwlatlong/internal/services"
	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

type importFlagValues struct {
	file   string
	config string
}

// NewRootCmd builds the wwlatlong command tree.
func NewRootCmd() *cobra.Command {
	flags := &importFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "wwlatlong --file <locations.csv>",
		Short: "Populate ww_locations latitude and longitude from a CSV file",
		Long: `wwlatlong reads a CSV file with locationid, latitude and longitude columns
and updates the matching rows of the ww_locations table.

Rows with a blank latitude or longitude are skipped. Database credentials
are read from the "database" object of a JSON (or YAML) configuration file.
Values of the form ${VAR} are taken from the environment or a .env file.

Exit Codes:
  0  - Success (or the CSV file holds no locations)
  1  - Invalid database configuration
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  4  - General error
  10 - Invalid CSV input
  11 - Database connection failed
  13 - SQL execution failed`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVarP(&flags.file, "file", "f", "", "CSV file with locationid, latitude and longitude columns")
	rootCmd.Flags().StringVarP(&flags.config, "config", "c", latlong.DefaultConfigFile, "Database configuration file (JSON, or YAML by extension)")
	_ = rootCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return NewRootCmd().Execute()
}

func runImport(cmd *cobra.Command, flags *importFlagValues) error {
	verbose := getVerboseFlag(cmd)
	// Run messages go to stdout; cobra reports returned errors on stderr.
	logger := logging.NewConsoleLoggerTo(cmd.OutOrStdout(), verbose)

	_ = godotenv.Load()

	runID := uuid.New()
	logger.Verbose("Run %s: importing %s using %s", runID, flags.file, flags.config)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewImportService(newConnectorFactory(logger), logger)
	result, err := svc.Import(ctx, latlong.ImportConfig{
		CSVPath:    flags.file,
		ConfigPath: flags.config,
		Verbose:    verbose,
	})
	if err != nil {
		return err
	}

	logger.Verbose("Run %s finished: %d updated, %d skipped", runID, result.Updated, result.Skipped)
	return nil
}

// newConnectorFactory reports configuration keys the selected driver ignores
// before building its connector.
func newConnectorFactory(logger latlong.Logger) latlong.ConnectorFactory {
	return func(cfg latlong.DatabaseConfig) (latlong.Connector, error) {
		if unused := db.UnusedKeys(cfg); len(unused) > 0 {
			logger.Verbose("Ignoring unknown configuration key(s): %s", strings.Join(unused, ", "))
		}
		return db.NewConnector(cfg)
	}
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

