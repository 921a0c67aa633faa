package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func createTestUser(t *testing.T, store *Store, email string) storage.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), storage.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func assertTableExists(t *testing.T, store *Store, table string) {
	t.Helper()
	var name string
	err := store.db.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		t.Fatalf("expected table %s to exist: %v", table, err)
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := openTestStore(t)

	for _, table := range []string{
		"users",
		"products",
		"orders",
		"sell_requests",
		"addresses",
		"payment_methods",
		"reviews",
	} {
		assertTableExists(t, store, table)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	user := createTestUser(t, store, "reopen@example.com")
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer reopened.Close()

	got, found, err := reopened.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user after reopen: %v", err)
	}
	if !found {
		t.Fatal("expected user to survive reopen")
	}
	if got.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, got.Email)
	}
}
