// Package app hosts the marketplace HTTP surface: catalog and order reads
// served through the response cache, admin writes, and cache operations
// endpoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/platform/timeouts"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/cache"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/service"
	marketsqlite "github.com/vinitgirdhar/KhelWapas/internal/services/market/storage/sqlite"
)

// Config defines the inputs for the market process.
type Config struct {
	HTTPAddr      string
	DBPath        string
	CacheTTL      time.Duration
	SweepInterval time.Duration
}

// Server hosts the marketplace HTTP API over the sqlite store and the
// in-process response cache.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *marketsqlite.Store
	cache      *cache.Cache
	service    *service.Service
}

// NewServer builds a configured market server. The sqlite store and cache
// are owned by the server and released by Close.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(config.DBPath)
	if dbPath == "" {
		dbPath = filepath.Join("data", "market.db")
	}

	store, err := openMarketStore(dbPath)
	if err != nil {
		return nil, err
	}

	responseCache := cache.New(config.SweepInterval)
	svc := service.New(store, responseCache, config.CacheTTL)

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(svc),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		store:      store,
		cache:      responseCache,
		service:    svc,
	}, nil
}

// Service exposes the underlying service, used by tests and scripts.
func (s *Server) Service() *service.Service {
	return s.service
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("market server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("market listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the cache janitor and the sqlite store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.cache != nil {
		s.cache.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close market store: %v", err)
		}
	}
}

func openMarketStore(path string) (*marketsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := marketsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market sqlite store: %w", err)
	}
	return store, nil
}
