// Package seed loads demo marketplace data into a sqlite store for local
// development. Seeding is idempotent: rows are keyed by email or name and
// skipped when already present.
package seed

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// Config holds seeding inputs.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Verbose       bool
}

// DefaultConfig returns the demo credentials used by local development.
func DefaultConfig() Config {
	return Config{
		AdminEmail:    "admin@khelwapas.com",
		AdminPassword: "admin123",
	}
}

// Run seeds the store with the demo fixtures.
func Run(ctx context.Context, store storage.Store, cfg Config) error {
	admin, err := ensureUser(ctx, store, cfg, storage.User{
		FullName: "KhelWapas Admin",
		Email:    cfg.AdminEmail,
		Role:     storage.RoleAdmin,
		Status:   storage.UserStatusActive,
	}, cfg.AdminPassword)
	if err != nil {
		return err
	}

	demoUser, err := ensureUser(ctx, store, cfg, storage.User{
		FullName: "Ravi Sharma",
		Email:    "ravi@example.com",
		Phone:    "9876543210",
		Role:     storage.RoleUser,
		Status:   storage.UserStatusActive,
	}, "password123")
	if err != nil {
		return err
	}

	if err := ensureProducts(ctx, store, cfg); err != nil {
		return err
	}
	if err := ensureSellRequest(ctx, store, cfg, demoUser); err != nil {
		return err
	}
	if err := ensureAddress(ctx, store, cfg, demoUser); err != nil {
		return err
	}

	if cfg.Verbose {
		log.Printf("seeded admin %s and user %s", admin.Email, demoUser.Email)
	}
	return nil
}

func ensureUser(ctx context.Context, store storage.Store, cfg Config, data storage.User, password string) (storage.User, error) {
	existing, found, err := store.GetUserByEmail(ctx, data.Email)
	if err != nil {
		return storage.User{}, fmt.Errorf("look up user %s: %w", data.Email, err)
	}
	if found {
		if cfg.Verbose {
			log.Printf("user %s already present, skipping", data.Email)
		}
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}
	data.PasswordHash = string(hash)

	user, err := store.CreateUser(ctx, data)
	if err != nil {
		return storage.User{}, fmt.Errorf("create user %s: %w", data.Email, err)
	}
	if cfg.Verbose {
		log.Printf("created user %s (%s)", user.Email, user.Role)
	}
	return user, nil
}

func ensureProducts(ctx context.Context, store storage.Store, cfg Config) error {
	count, err := store.CountProducts(ctx, storage.ProductFilter{})
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		if cfg.Verbose {
			log.Printf("%d products already present, skipping catalog fixtures", count)
		}
		return nil
	}

	for _, product := range demoProducts() {
		if _, err := store.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("create product %s: %w", product.Name, err)
		}
		if cfg.Verbose {
			log.Printf("created product %s", product.Name)
		}
	}
	return nil
}

func ensureSellRequest(ctx context.Context, store storage.Store, cfg Config, user storage.User) error {
	count, err := store.CountSellRequests(ctx, storage.SellRequestFilter{UserID: &user.ID})
	if err != nil {
		return fmt.Errorf("count sell requests: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = store.CreateSellRequest(ctx, storage.SellRequest{
		UserID:        user.ID,
		FullName:      user.FullName,
		Email:         user.Email,
		Category:      "Cricket",
		Title:         "SG Kashmir Willow Bat",
		Description:   "Lightly used for one season, no cracks.",
		Price:         "1200",
		ContactMethod: "phone",
		ContactDetail: user.Phone,
	})
	if err != nil {
		return fmt.Errorf("create sell request: %w", err)
	}
	if cfg.Verbose {
		log.Printf("created demo sell request for %s", user.Email)
	}
	return nil
}

func ensureAddress(ctx context.Context, store storage.Store, cfg Config, user storage.User) error {
	count, err := store.CountAddresses(ctx, storage.AddressFilter{UserID: &user.ID})
	if err != nil {
		return fmt.Errorf("count addresses: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = store.CreateAddress(ctx, storage.Address{
		UserID:     user.ID,
		Title:      "Home",
		FullName:   user.FullName,
		Phone:      user.Phone,
		Street:     "14 MG Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
		IsDefault:  true,
	})
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	if cfg.Verbose {
		log.Printf("created default address for %s", user.Email)
	}
	return nil
}

func demoProducts() []storage.Product {
	return []storage.Product{
		{
			Name:        "SS Ton Player Edition Bat",
			Category:    "Cricket",
			Type:        storage.ProductTypeNew,
			Price:       "18500",
			ImageURLs:   []string{"/images/products/cricket-bat-1.jpg"},
			Description: "English willow bat with full profile and thick edges.",
			Specs:       map[string]string{"Willow": "English", "Weight": "1180g"},
			Badge:       "Bestseller",
			IsAvailable: true,
		},
		{
			Name:          "Yonex Astrox 88D Pro",
			Category:      "Badminton",
			Type:          storage.ProductTypeNew,
			Price:         "14200",
			OriginalPrice: "16990",
			ImageURLs:     []string{"/images/products/badminton-racket-1.jpg"},
			Description:   "Head-heavy racket for aggressive doubles play.",
			Specs:         map[string]string{"Balance": "Head Heavy", "Flex": "Stiff"},
			IsAvailable:   true,
		},
		{
			Name:        "Nivia Storm Football",
			Category:    "Football",
			Type:        storage.ProductTypeNew,
			Price:       "650",
			ImageURLs:   []string{"/images/products/football-1.jpg"},
			Description: "Rubberized moulded football, size 5.",
			Specs:       map[string]string{"Size": "5"},
			IsAvailable: true,
		},
		{
			Name:        "Cosco Aggression 400 Bat",
			Category:    "Cricket",
			Type:        storage.ProductTypePreowned,
			Price:       "2400",
			Grade:       "A",
			ImageURLs:   []string{"/images/products/cricket-bat-2.jpg"},
			Description: "Kashmir willow, refurbished handle, match ready.",
			Specs:       map[string]string{"Willow": "Kashmir"},
			IsAvailable: true,
		},
		{
			Name:        "Li-Ning Turbo X90 Racket",
			Category:    "Badminton",
			Type:        storage.ProductTypePreowned,
			Price:       "3800",
			Grade:       "B",
			ImageURLs:   []string{"/images/products/badminton-racket-2.jpg"},
			Description: "Minor paint wear on the frame, fresh strings.",
			IsAvailable: true,
		},
	}
}
