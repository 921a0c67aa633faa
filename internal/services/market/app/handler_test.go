package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/cache"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/service"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
	marketsqlite "github.com/vinitgirdhar/KhelWapas/internal/services/market/storage/sqlite"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()
	store, err := marketsqlite.Open(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	responseCache := cache.New(time.Hour)
	t.Cleanup(func() {
		responseCache.Stop()
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	svc := service.New(store, responseCache, time.Hour)
	return NewHandler(svc), svc
}

func doRequest(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListProductsCacheHeaders(t *testing.T) {
	h, svc := newTestHandler(t)

	if _, err := svc.CreateProduct(context.Background(), storage.Product{
		Name:        "Header Bat",
		Category:    "Cricket",
		Price:       "700",
		IsAvailable: true,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	first := doRequest(t, h, http.MethodGet, "/api/products?category=Cricket", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("expected X-Cache MISS, got %q", got)
	}
	if first.Header().Get("X-Response-Time") == "" {
		t.Fatal("expected X-Response-Time header")
	}

	second := doRequest(t, h, http.MethodGet, "/api/products?category=Cricket", nil)
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("expected X-Cache HIT, got %q", got)
	}

	var list service.ProductList
	if err := json.Unmarshal(second.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(list.Products) != 1 || list.Products[0].Name != "Header Bat" {
		t.Fatalf("unexpected page %+v", list)
	}
}

func TestListProductsRejectsBadAvailable(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/products?available=maybe", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProductNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/products/missing-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestApproveSellRequestEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, storage.User{
		FullName:     "Seller",
		Email:        "endpoint-seller@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	request, err := svc.CreateSellRequest(ctx, storage.SellRequest{
		UserID:   user.ID,
		Category: "Cricket",
		Title:    "Handed In Bat",
		Price:    "850",
	})
	if err != nil {
		t.Fatalf("create sell request: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/api/sell-requests/"+request.ID+"/approve", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var product storage.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Type != storage.ProductTypePreowned {
		t.Fatalf("expected preowned spawn, got %q", product.Type)
	}
}

func TestCacheStatsAndInvalidate(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodGet, "/api/products", nil); rec.Code != http.StatusOK {
		t.Fatalf("warm cache: %d", rec.Code)
	}

	stats := doRequest(t, h, http.MethodGet, "/api/cache", nil)
	if stats.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", stats.Code)
	}
	var got cache.Stats
	if err := json.Unmarshal(stats.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if got.Size != 1 {
		t.Fatalf("expected one cached page, got %d", got.Size)
	}

	inv := doRequest(t, h, http.MethodPost, "/api/cache/invalidate", map[string]any{"pattern": "products:"})
	if inv.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", inv.Code, inv.Body.String())
	}
	var result map[string]any
	if err := json.Unmarshal(inv.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if removed, ok := result["removed"].(float64); !ok || removed != 1 {
		t.Fatalf("expected 1 removed, got %v", result["removed"])
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	h, _ := newTestHandler(t)

	if rec := doRequest(t, h, http.MethodGet, "/api/products", nil); rec.Code != http.StatusOK {
		t.Fatalf("warm cache: %d", rec.Code)
	}
	rec := doRequest(t, h, http.MethodPost, "/api/cache/invalidate", map[string]any{"all": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stats := doRequest(t, h, http.MethodGet, "/api/cache", nil)
	var got cache.Stats
	if err := json.Unmarshal(stats.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if got.Size != 0 {
		t.Fatalf("expected empty cache, got %d entries", got.Size)
	}
}

func TestCacheInvalidateRejectsEmptyBody(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/cache/invalidate", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodPost, "/api/cache/invalidate", map[string]any{"pattern": "["})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed pattern, got %d", rec.Code)
	}
}

func TestDefaultAddressEndpoint(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, storage.User{
		FullName:     "Address Owner",
		Email:        "owner@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	first, err := svc.CreateAddress(ctx, storage.Address{UserID: user.ID, Title: "Home", IsDefault: true})
	if err != nil {
		t.Fatalf("create first address: %v", err)
	}
	second, err := svc.CreateAddress(ctx, storage.Address{UserID: user.ID, Title: "Office"})
	if err != nil {
		t.Fatalf("create second address: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/api/users/"+user.ID+"/addresses/"+second.ID+"/default", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	list := doRequest(t, h, http.MethodGet, "/api/users/"+user.ID+"/addresses", nil)
	var addresses []storage.Address
	if err := json.Unmarshal(list.Body.Bytes(), &addresses); err != nil {
		t.Fatalf("decode addresses: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addresses))
	}
	for _, address := range addresses {
		if address.ID == first.ID && address.IsDefault {
			t.Fatal("expected old default to be cleared")
		}
		if address.ID == second.ID && !address.IsDefault {
			t.Fatal("expected new default to be set")
		}
	}
}
