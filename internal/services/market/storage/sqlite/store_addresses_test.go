package sqlite

import (
	"context"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func createTestAddress(t *testing.T, store *Store, userID string, isDefault bool) storage.Address {
	t.Helper()
	address, err := store.CreateAddress(context.Background(), storage.Address{
		UserID:     userID,
		Title:      "Home",
		FullName:   "Test User",
		Phone:      "9876543210",
		Street:     "12 MG Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
		IsDefault:  isDefault,
	})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	return address
}

func TestCreateAddressDefaultCountry(t *testing.T) {
	store := openTestStore(t)

	user := createTestUser(t, store, "addr@example.com")
	address := createTestAddress(t, store, user.ID, false)
	if address.Country != "India" {
		t.Fatalf("expected default country India, got %q", address.Country)
	}
	if _, err := store.CreateAddress(context.Background(), storage.Address{Title: "No Owner"}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestUpdateAddressesClearsDefaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "defaults@example.com")
	first := createTestAddress(t, store, user.ID, true)
	second := createTestAddress(t, store, user.ID, true)

	flagTrue := true
	flagFalse := false
	if err := store.UpdateAddresses(ctx,
		storage.AddressFilter{UserID: &user.ID, IsDefault: &flagTrue},
		storage.AddressPatch{IsDefault: &flagFalse},
	); err != nil {
		t.Fatalf("clear defaults: %v", err)
	}

	if _, err := store.UpdateAddress(ctx, second.ID, storage.AddressPatch{IsDefault: &flagTrue}); err != nil {
		t.Fatalf("set new default: %v", err)
	}

	defaults, err := store.ListAddresses(ctx, storage.AddressFilter{UserID: &user.ID, IsDefault: &flagTrue}, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list defaults: %v", err)
	}
	if len(defaults) != 1 || defaults[0].ID != second.ID {
		t.Fatalf("expected exactly one default (%s), got %d", second.ID, len(defaults))
	}

	reread, _, err := store.GetAddress(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first address: %v", err)
	}
	if reread.IsDefault {
		t.Fatal("expected first address to lose its default flag")
	}
}

func TestDeleteUserCascadesAddresses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "cascade@example.com")
	createTestAddress(t, store, user.ID, true)

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	count, err := store.CountAddresses(ctx, storage.AddressFilter{UserID: &user.ID})
	if err != nil {
		t.Fatalf("count addresses: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected addresses to cascade on user delete, got %d", count)
	}
}
