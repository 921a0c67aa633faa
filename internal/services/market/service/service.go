// Package service orchestrates marketplace reads and writes across the
// store and the response cache. Read-heavy paths are cache-aware; every
// successful write invalidates the affected key pattern so later reads
// rebuild from the store.
package service

import (
	"log"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/cache"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCacheTTL matches the original read-path TTL of five minutes.
const DefaultCacheTTL = 5 * time.Minute

// Cache key prefixes, one per entity with a cached read path.
const (
	productKeyPrefix     = "products"
	orderKeyPrefix       = "orders"
	userKeyPrefix        = "users"
	sellRequestKeyPrefix = "sell-requests"
)

// Service exposes marketplace operations to HTTP handlers and scripts.
// The cache is an explicit dependency, injected at construction, so tests
// can tear it down cleanly.
type Service struct {
	store  storage.Store
	cache  *cache.Cache
	ttl    time.Duration
	tracer trace.Tracer
}

// New wires a service over the given store and cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func New(store storage.Store, c *cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		store:  store,
		cache:  c,
		ttl:    ttl,
		tracer: otel.Tracer("khelwapas/market"),
	}
}

// Cache exposes the underlying response cache for operational endpoints
// (stats, manual invalidation).
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// invalidate drops every cached view under the given prefix. The patterns
// are fixed strings, so a compile failure indicates a programming error and
// is only logged.
func (s *Service) invalidate(prefix string) {
	if _, err := s.cache.InvalidatePattern(prefix + ":"); err != nil {
		log.Printf("invalidate %s cache: %v", prefix, err)
	}
}
