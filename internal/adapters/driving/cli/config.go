package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Settings are resolved from built-in defaults, then the config file,
then environment variables. Environment variables always win.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting to the config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Config file: %s\n\n", settingsService.Path())
	for _, key := range settingsService.Keys() {
		line := fmt.Sprintf("%-32s %s", key, settingValue(settings, key))
		if env := settingsService.EnvVar(key); env != "" {
			if _, ok := os.LookupEnv(env); ok {
				line += fmt.Sprintf("  (from $%s)", env)
			}
		}
		cmd.Println(line)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	if key == "embedding.api_key" {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	if env := settingsService.EnvVar(key); env != "" {
		if _, ok := os.LookupEnv(env); ok {
			cmd.Printf("Note: $%s is set and overrides this value.\n", env)
		}
	}
	return nil
}

// settingValue renders the effective value of a config key.
func settingValue(s *domain.Settings, key string) string {
	switch key {
	case "document.path":
		return s.Document.Path
	case "document.name":
		return s.Document.Name
	case "collection.name":
		return s.Storage.Collection
	case "chunking.max_chars":
		return strconv.Itoa(s.Chunking.MaxChars)
	case "storage.backend":
		return s.Storage.Backend.String()
	case "storage.path":
		return s.Storage.Path
	case "storage.postgres_dsn":
		return orUnset(s.Storage.PostgresDSN)
	case "embedding.provider":
		return s.Embedding.Provider.String()
	case "embedding.model":
		return s.Embedding.Model
	case "embedding.base_url":
		return orUnset(s.Embedding.BaseURL)
	case "embedding.api_key":
		if s.Embedding.APIKey == "" {
			return "(not set)"
		}
		return maskAPIKey(s.Embedding.APIKey)
	case "embedding.dimensions":
		return strconv.Itoa(s.Embedding.ResolvedDimensions())
	case "embedding.requests_per_second":
		return strconv.FormatFloat(s.Embedding.RequestsPerSecond, 'g', -1, 64)
	case "server.addr":
		return s.Server.Addr
	case "server.default_top_k":
		return strconv.Itoa(s.Server.DefaultTopK)
	case "server.max_top_k":
		return strconv.Itoa(s.Server.MaxTopK)
	case "server.cors_origins":
		return strings.Join(s.Server.CORSOrigins, ",")
	default:
		return ""
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// maskAPIKey keeps the first and last four characters of long keys.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
