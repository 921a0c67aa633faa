package sqlite

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func createTestProduct(t *testing.T, store *Store, data storage.Product) storage.Product {
	t.Helper()
	product, err := store.CreateProduct(context.Background(), data)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestCreateProductRoundTrip(t *testing.T) {
	store := openTestStore(t)

	created := createTestProduct(t, store, storage.Product{
		Name:          "SS Ton Player Edition Bat",
		Category:      "Cricket",
		Type:          storage.ProductTypeNew,
		Price:         "18500",
		OriginalPrice: "21000",
		ImageURLs:     []string{"/images/a.jpg", "/images/b.jpg"},
		Description:   "English willow.",
		Specs:         map[string]string{"Willow": "English", "Weight": "1180g"},
		Badge:         "Bestseller",
		IsAvailable:   true,
	})

	got, found, err := store.GetProduct(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !found {
		t.Fatal("expected product to be found")
	}
	if got.Price != "18500" {
		t.Fatalf("expected price text to round-trip exactly, got %q", got.Price)
	}
	if got.OriginalPrice != "21000" {
		t.Fatalf("expected original price %q, got %q", "21000", got.OriginalPrice)
	}
	if !reflect.DeepEqual(got.ImageURLs, []string{"/images/a.jpg", "/images/b.jpg"}) {
		t.Fatalf("expected image urls to decode, got %v", got.ImageURLs)
	}
	if !reflect.DeepEqual(got.Specs, map[string]string{"Willow": "English", "Weight": "1180g"}) {
		t.Fatalf("expected specs to decode, got %v", got.Specs)
	}
	if !got.IsAvailable {
		t.Fatal("expected availability to decode as true")
	}
}

func TestCreateProductDefaultsAndValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	product := createTestProduct(t, store, storage.Product{
		Name:     "Plain Ball",
		Category: "Cricket",
		Price:    "250",
	})
	if product.Type != storage.ProductTypeNew {
		t.Fatalf("expected default type %q, got %q", storage.ProductTypeNew, product.Type)
	}
	if product.ImageURLs == nil {
		t.Fatal("expected empty image list to decode as non-nil")
	}

	if _, err := store.CreateProduct(ctx, storage.Product{Category: "Cricket", Price: "100"}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := store.CreateProduct(ctx, storage.Product{Name: "X", Price: "100"}); err == nil {
		t.Error("expected error for missing category")
	}
	if _, err := store.CreateProduct(ctx, storage.Product{Name: "X", Category: "C", Price: "12.34.5"}); err == nil {
		t.Error("expected error for malformed price")
	}
}

func TestListProductsFilterOrderAndPage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		createTestProduct(t, store, storage.Product{
			Name:        name,
			Category:    "Cricket",
			Type:        storage.ProductTypeNew,
			Price:       "100",
			IsAvailable: true,
		})
		time.Sleep(2 * time.Millisecond)
	}
	createTestProduct(t, store, storage.Product{
		Name:     "Other",
		Category: "Football",
		Price:    "50",
	})

	category := "Cricket"
	available := true
	page, err := store.ListProducts(ctx, storage.ProductFilter{Category: &category, IsAvailable: &available}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
		Take:  storage.Take(2),
	})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page))
	}
	if page[0].Name != "Third" || page[1].Name != "Second" {
		t.Fatalf("expected newest first, got %q then %q", page[0].Name, page[1].Name)
	}

	rest, err := store.ListProducts(ctx, storage.ProductFilter{Category: &category}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
		Take:  storage.Take(2),
		Skip:  2,
	})
	if err != nil {
		t.Fatalf("list products page 2: %v", err)
	}
	if len(rest) != 1 || rest[0].Name != "First" {
		t.Fatalf("expected the oldest product on page 2, got %v", rest)
	}
}

func TestListProductsRejectsUnknownOrderField(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ListProducts(context.Background(), storage.ProductFilter{}, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "id; DROP TABLE products"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown order field")
	}
}

func TestUpdateProductPartialPatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := createTestProduct(t, store, storage.Product{
		Name:        "Preowned Bat",
		Category:    "Cricket",
		Type:        storage.ProductTypePreowned,
		Price:       "2400",
		Grade:       "A",
		IsAvailable: true,
	})
	time.Sleep(5 * time.Millisecond)

	grade := "B"
	updated, err := store.UpdateProduct(ctx, created.ID, storage.ProductPatch{Grade: &grade})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Grade != "B" {
		t.Fatalf("expected grade B, got %q", updated.Grade)
	}
	if updated.Name != created.Name || updated.Price != created.Price || !updated.IsAvailable {
		t.Fatal("expected untouched fields to survive the patch")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("expected updatedAt to advance")
	}
}

func TestUpdateProductClearsOriginalPrice(t *testing.T) {
	store := openTestStore(t)

	created := createTestProduct(t, store, storage.Product{
		Name:          "Discounted",
		Category:      "Cricket",
		Price:         "900",
		OriginalPrice: "1200",
	})

	empty := ""
	updated, err := store.UpdateProduct(context.Background(), created.ID, storage.ProductPatch{OriginalPrice: &empty})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.OriginalPrice != "" {
		t.Fatalf("expected original price cleared, got %q", updated.OriginalPrice)
	}
}

func TestDeleteAndCountProducts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	product := createTestProduct(t, store, storage.Product{
		Name:     "Short Lived",
		Category: "Cricket",
		Price:    "10",
	})

	count, err := store.CountProducts(ctx, storage.ProductFilter{})
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 product, got %d", count)
	}

	if err := store.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	_, found, err := store.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get deleted product: %v", err)
	}
	if found {
		t.Fatal("expected product to be gone")
	}
}
