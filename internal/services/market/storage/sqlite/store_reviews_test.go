package sqlite

import (
	"context"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func TestCreateReviewValidatesRating(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "reviewer@example.com")
	product := createTestProduct(t, store, storage.Product{
		Name:     "Reviewed Bat",
		Category: "Cricket",
		Price:    "999",
	})

	for _, rating := range []int{0, 6, -1} {
		if _, err := store.CreateReview(ctx, storage.Review{
			ProductID: product.ID,
			UserID:    user.ID,
			Rating:    rating,
		}); err == nil {
			t.Errorf("expected error for rating %d", rating)
		}
	}

	review, err := store.CreateReview(ctx, storage.Review{
		ProductID:    product.ID,
		UserID:       user.ID,
		Rating:       4,
		Comment:      "Solid pickup.",
		ReviewerName: "Reviewer",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.Rating != 4 || review.Comment != "Solid pickup." {
		t.Fatalf("expected review to round-trip, got %+v", review)
	}
}

func TestListReviewsByProduct(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "fan@example.com")
	product := createTestProduct(t, store, storage.Product{
		Name:     "Popular Bat",
		Category: "Cricket",
		Price:    "999",
	})
	other := createTestProduct(t, store, storage.Product{
		Name:     "Quiet Bat",
		Category: "Cricket",
		Price:    "500",
	})

	for _, productID := range []string{product.ID, product.ID, other.ID} {
		if _, err := store.CreateReview(ctx, storage.Review{
			ProductID: productID,
			UserID:    user.ID,
			Rating:    5,
		}); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	reviews, err := store.ListReviews(ctx, storage.ReviewFilter{ProductID: &product.ID}, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	rating := 3
	if _, err := store.UpdateReview(ctx, reviews[0].ID, storage.ReviewPatch{Rating: &rating}); err != nil {
		t.Fatalf("update review: %v", err)
	}
	updated, _, err := store.GetReview(ctx, reviews[0].ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if updated.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Rating)
	}
}
