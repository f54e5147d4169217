// Package cli implements the isoguide command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/config/file"
	"github.com/custodia-labs/isoguide/internal/app"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
	"github.com/custodia-labs/isoguide/internal/core/services"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// skipSetup marks commands that run without settings.
const skipSetup = "isoguide/skip-setup"

var version = "dev"

// Global flags.
var (
	dataDir    string
	configPath string
	envFile    string
	backend    string
	verbose    bool
	logFormat  string
)

// settingsService is resolved once per invocation by setup.
var settingsService driving.SettingsService

// Constructors replaced in tests.
var (
	openSettings = defaultOpenSettings
	newContainer = app.New
	openStore    = app.OpenStore
)

var rootCmd = &cobra.Command{
	Use:   "isoguide",
	Short: "ISO 27001 guidance from a local vector index",
	Long: `isoguide indexes the ISO 27001 guidance document into a vector
collection and answers questions by nearest-neighbour retrieval.

Build the collection once with 'isoguide index', then query it with
'isoguide ask', 'isoguide chat', the HTTP API ('isoguide serve') or the
MCP server ('isoguide mcp serve').`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataDir, "data-dir", "data", "directory holding the document, config and vector store")
	flags.StringVar(&configPath, "config", "", "config file (default <data-dir>/config.toml)")
	flags.StringVar(&envFile, "env", ".env", "dotenv file loaded before reading settings")
	flags.StringVar(&backend, "store", "", "vector store backend: sqlite, postgres or memory")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFormat, "log-format", "text", "structured log format: text or json")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetFormat(logFormat)

	if cmd.Annotations[skipSetup] != "" {
		return nil
	}

	if err := loadEnvFile(envFile, cmd.Flags().Changed("env")); err != nil {
		return err
	}

	svc, err := openSettings(dataDir, configPath)
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing file is only an error when it was asked for explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	logger.Debug("Loaded environment from %s", path)
	return nil
}

func defaultOpenSettings(dataDir, configPath string) (driving.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath != "" {
		store, err = file.NewConfigStoreAt(configPath)
	} else {
		store, err = file.NewConfigStore(dataDir)
	}
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store, dataDir), nil
}

// loadSettings resolves settings and applies the --store override.
func loadSettings() (*domain.Settings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if backend != "" {
		settings.Storage.Backend = domain.StorageBackend(backend)
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// openContainer builds the services for one command.
func openContainer(cmd *cobra.Command) (*app.Container, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return newContainer(cmd.Context(), settings)
}
