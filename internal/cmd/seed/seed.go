// Package seed parses seed tool flags and runs the database seeder.
package seed

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	entrypoint "github.com/vinitgirdhar/KhelWapas/internal/platform/cmd"
	"github.com/vinitgirdhar/KhelWapas/internal/seed"
	marketsqlite "github.com/vinitgirdhar/KhelWapas/internal/services/market/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath        string `env:"KHELWAPAS_DB_PATH" envDefault:"data/market.db"`
	AdminEmail    string `env:"KHELWAPAS_ADMIN_EMAIL" envDefault:"admin@khelwapas.com"`
	AdminPassword string `env:"KHELWAPAS_ADMIN_PASSWORD" envDefault:"admin123"`
	Verbose       bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the sqlite database file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store and loads the demo fixtures.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := marketsqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close store: %v\n", err)
			}
		}()

		return seed.Run(ctx, store, seed.Config{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Verbose:       cfg.Verbose,
		})
	})
}
