package sqlite

import (
	"context"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func createTestSellRequest(t *testing.T, store *Store, userID string) storage.SellRequest {
	t.Helper()
	request, err := store.CreateSellRequest(context.Background(), storage.SellRequest{
		UserID:        userID,
		FullName:      "Seller",
		Email:         "seller@example.com",
		Category:      "Cricket",
		Title:         "Old Bat",
		Description:   "One season of use.",
		Price:         "1200",
		ContactMethod: "phone",
	})
	if err != nil {
		t.Fatalf("create sell request: %v", err)
	}
	return request
}

func TestCreateSellRequestAlwaysPending(t *testing.T) {
	store := openTestStore(t)

	user := createTestUser(t, store, "seller@example.com")
	request, err := store.CreateSellRequest(context.Background(), storage.SellRequest{
		UserID: user.ID,
		Title:  "Sneaky Approved Request",
		Price:  "500",
		Status: storage.SellRequestApproved,
	})
	if err != nil {
		t.Fatalf("create sell request: %v", err)
	}
	if request.Status != storage.SellRequestPending {
		t.Fatalf("expected new requests to start Pending, got %q", request.Status)
	}
	if request.ImageURLs == nil {
		t.Fatal("expected empty image list to decode as non-nil")
	}
}

func TestUpdateSellRequestStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "status@example.com")
	request := createTestSellRequest(t, store, user.ID)

	approved := storage.SellRequestApproved
	updated, err := store.UpdateSellRequest(ctx, request.ID, storage.SellRequestPatch{Status: &approved})
	if err != nil {
		t.Fatalf("update sell request: %v", err)
	}
	if updated.Status != storage.SellRequestApproved {
		t.Fatalf("expected Approved, got %q", updated.Status)
	}
	if updated.Title != request.Title || updated.Price != request.Price {
		t.Fatal("expected untouched fields to survive the patch")
	}
}

func TestListSellRequestsByStatusWithUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "lister@example.com")
	request := createTestSellRequest(t, store, user.ID)
	second := createTestSellRequest(t, store, user.ID)

	rejected := storage.SellRequestRejected
	if _, err := store.UpdateSellRequest(ctx, second.ID, storage.SellRequestPatch{Status: &rejected}); err != nil {
		t.Fatalf("reject request: %v", err)
	}

	pending := storage.SellRequestPending
	requests, err := store.ListSellRequests(ctx, storage.SellRequestFilter{Status: &pending}, storage.SellRequestListOptions{
		IncludeUser: true,
	})
	if err != nil {
		t.Fatalf("list sell requests: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != request.ID {
		t.Fatalf("expected one pending request, got %d", len(requests))
	}
	if requests[0].User == nil || requests[0].User.ID != user.ID {
		t.Fatal("expected user attached to pending request")
	}

	count, err := store.CountSellRequests(ctx, storage.SellRequestFilter{UserID: &user.ID})
	if err != nil {
		t.Fatalf("count sell requests: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 requests for user, got %d", count)
	}
}
