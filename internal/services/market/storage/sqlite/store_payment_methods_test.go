package sqlite

import (
	"context"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func TestCreatePaymentMethodCardAndUpi(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "payer@example.com")

	card, err := store.CreatePaymentMethod(ctx, storage.PaymentMethod{
		UserID:      user.ID,
		Type:        "card",
		CardLast4:   "4242",
		CardType:    "Visa",
		CardHolder:  "Test User",
		ExpiryMonth: 9,
		ExpiryYear:  2028,
		IsDefault:   true,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	if card.ExpiryMonth != 9 || card.ExpiryYear != 2028 {
		t.Fatalf("expected expiry 9/2028, got %d/%d", card.ExpiryMonth, card.ExpiryYear)
	}

	upi, err := store.CreatePaymentMethod(ctx, storage.PaymentMethod{
		UserID: user.ID,
		Type:   "upi",
		UpiID:  "test@okaxis",
	})
	if err != nil {
		t.Fatalf("create upi: %v", err)
	}
	if upi.ExpiryMonth != 0 || upi.ExpiryYear != 0 {
		t.Fatalf("expected no expiry for upi, got %d/%d", upi.ExpiryMonth, upi.ExpiryYear)
	}
	if upi.CardLast4 != "" {
		t.Fatalf("expected empty card fields for upi, got %q", upi.CardLast4)
	}

	if _, err := store.CreatePaymentMethod(ctx, storage.PaymentMethod{UserID: user.ID}); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestUpdatePaymentMethodsClearsDefaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "switcher@example.com")
	first, err := store.CreatePaymentMethod(ctx, storage.PaymentMethod{
		UserID:    user.ID,
		Type:      "card",
		CardLast4: "1111",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := store.CreatePaymentMethod(ctx, storage.PaymentMethod{
		UserID: user.ID,
		Type:   "upi",
		UpiID:  "pay@upi",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	flagTrue := true
	flagFalse := false
	if err := store.UpdatePaymentMethods(ctx,
		storage.PaymentMethodFilter{UserID: &user.ID, IsDefault: &flagTrue},
		storage.PaymentMethodPatch{IsDefault: &flagFalse},
	); err != nil {
		t.Fatalf("clear defaults: %v", err)
	}
	if _, err := store.UpdatePaymentMethod(ctx, second.ID, storage.PaymentMethodPatch{IsDefault: &flagTrue}); err != nil {
		t.Fatalf("set new default: %v", err)
	}

	defaults, err := store.ListPaymentMethods(ctx, storage.PaymentMethodFilter{UserID: &user.ID, IsDefault: &flagTrue}, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list defaults: %v", err)
	}
	if len(defaults) != 1 || defaults[0].ID != second.ID {
		t.Fatalf("expected exactly one default, got %d", len(defaults))
	}

	reread, _, err := store.GetPaymentMethod(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first method: %v", err)
	}
	if reread.IsDefault {
		t.Fatal("expected first method to lose its default flag")
	}
}
