// Package cli implements autolavadoctl, the operator tool for schema
// migrations, admin accounts and demo data.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/models"
	"github.com/dipaca/autolavado/internal/storage"
)

var (
	configPath  string
	databaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "autolavadoctl",
	Short: "Administer the autolavado database",
	Long: `Apply schema migrations, create admin logins and load demo data.

The database is taken from --database-url, or else from the same config the
API reads (--config, CONFIG_PATH or the environment).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string, overrides the config")
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// settings resolves the connection string and migrations directory.
type settings struct {
	dsn            string
	migrationsPath string
}

func loadSettings() (settings, error) {
	if databaseURL != "" {
		path := os.Getenv("MIGRATIONS_PATH")
		if path == "" {
			path = "./migrations"
		}
		return settings{dsn: databaseURL, migrationsPath: path}, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return settings{}, err
	}
	return settings{dsn: cfg.StorageConnectionString, migrationsPath: cfg.MigrationsPath}, nil
}

// accountStore is the part of the store used by create-admin and seed.
type accountStore interface {
	UpsertAdmin(ctx context.Context, email, hash, nombre string) (*models.User, error)
	SeedDemo(ctx context.Context, adminHash, clienteHash string) error
	Close() error
}

var openStore = func(dsn string) (accountStore, error) {
	return storage.New(dsn)
}
