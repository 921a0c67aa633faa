// Package market parses market service flags and launches the service.
package market

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/vinitgirdhar/KhelWapas/internal/platform/cmd"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/app"
)

// Config holds market command configuration.
type Config struct {
	Port       int           `env:"KHELWAPAS_PORT" envDefault:"8080"`
	DBPath     string        `env:"KHELWAPAS_DB_PATH" envDefault:"data/market.db"`
	CacheTTL   time.Duration `env:"KHELWAPAS_CACHE_TTL" envDefault:"5m"`
	CacheSweep time.Duration `env:"KHELWAPAS_CACHE_SWEEP" envDefault:"5m"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The market HTTP server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the sqlite database file")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Response cache entry lifetime")
	fs.DurationVar(&cfg.CacheSweep, "cache-sweep", cfg.CacheSweep, "Response cache janitor interval")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the market HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMarket, func(ctx context.Context) error {
		server, err := app.NewServer(app.Config{
			HTTPAddr:      fmt.Sprintf(":%d", cfg.Port),
			DBPath:        cfg.DBPath,
			CacheTTL:      cfg.CacheTTL,
			SweepInterval: cfg.CacheSweep,
		})
		if err != nil {
			return fmt.Errorf("init market server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve market: %w", err)
		}
		return nil
	})
}
