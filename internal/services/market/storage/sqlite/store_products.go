package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

const productColumns = "id, name, category, type, price, originalPrice, grade, imageUrls, description, specs, badge, isAvailable, createdAt, updatedAt"

var productOrderFields = map[string]bool{
	"name":        true,
	"category":    true,
	"type":        true,
	"price":       true,
	"grade":       true,
	"isAvailable": true,
	"createdAt":   true,
	"updatedAt":   true,
}

type productRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Category      string         `db:"category"`
	Type          string         `db:"type"`
	Price         string         `db:"price"`
	OriginalPrice sql.NullString `db:"originalPrice"`
	Grade         sql.NullString `db:"grade"`
	ImageURLs     string         `db:"imageUrls"`
	Description   string         `db:"description"`
	Specs         sql.NullString `db:"specs"`
	Badge         sql.NullString `db:"badge"`
	IsAvailable   int            `db:"isAvailable"`
	CreatedAt     string         `db:"createdAt"`
	UpdatedAt     string         `db:"updatedAt"`
}

func (r productRow) decode() (storage.Product, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.Product{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.Product{}, err
	}
	imageURLs, err := decodeStringList(r.ImageURLs)
	if err != nil {
		return storage.Product{}, err
	}
	var specs map[string]string
	if r.Specs.Valid {
		specs, err = decodeSpecs(r.Specs.String)
		if err != nil {
			return storage.Product{}, err
		}
	}
	return storage.Product{
		ID:            r.ID,
		Name:          r.Name,
		Category:      r.Category,
		Type:          r.Type,
		Price:         r.Price,
		OriginalPrice: fromNull(r.OriginalPrice),
		Grade:         fromNull(r.Grade),
		ImageURLs:     imageURLs,
		Description:   r.Description,
		Specs:         specs,
		Badge:         fromNull(r.Badge),
		IsAvailable:   r.IsAvailable != 0,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func productPredicates(f storage.ProductFilter) []predicate {
	var preds []predicate
	if f.Category != nil {
		preds = append(preds, predicate{"category", *f.Category})
	}
	if f.Type != nil {
		preds = append(preds, predicate{"type", *f.Type})
	}
	if f.Grade != nil {
		preds = append(preds, predicate{"grade", *f.Grade})
	}
	if f.Badge != nil {
		preds = append(preds, predicate{"badge", *f.Badge})
	}
	if f.IsAvailable != nil {
		preds = append(preds, predicate{"isAvailable", boolToInt(*f.IsAvailable)})
	}
	return preds
}

// GetProduct returns one product by id; absence is not an error.
func (s *Store) GetProduct(ctx context.Context, id string) (storage.Product, bool, error) {
	if err := s.ready(); err != nil {
		return storage.Product{}, false, err
	}
	var row productRow
	err := s.db.GetContext(ctx, &row, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Product{}, false, nil
		}
		return storage.Product{}, false, fmt.Errorf("get product: %w", err)
	}
	product, err := row.decode()
	if err != nil {
		return storage.Product{}, false, fmt.Errorf("get product: %w", err)
	}
	return product, true, nil
}

// ListProducts returns products matching the filter. Category, type and
// availability together are served by a composite index.
func (s *Store) ListProducts(ctx context.Context, filter storage.ProductFilter, opts storage.ListOptions) ([]storage.Product, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("products", productColumns, productPredicates(filter), opts, productOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]storage.Product, 0, len(rows))
	for _, row := range rows {
		product, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}

// CreateProduct inserts one product and returns the persisted row.
func (s *Store) CreateProduct(ctx context.Context, data storage.Product) (storage.Product, error) {
	if err := s.ready(); err != nil {
		return storage.Product{}, err
	}
	if strings.TrimSpace(data.Name) == "" {
		return storage.Product{}, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(data.Category) == "" {
		return storage.Product{}, fmt.Errorf("category is required")
	}
	productType := data.Type
	if productType == "" {
		productType = storage.ProductTypeNew
	}
	price, err := normalizeAmount(data.Price)
	if err != nil {
		return storage.Product{}, fmt.Errorf("create product: %w", err)
	}
	originalPrice := any(nil)
	if data.OriginalPrice != "" {
		normalized, err := normalizeAmount(data.OriginalPrice)
		if err != nil {
			return storage.Product{}, fmt.Errorf("create product: %w", err)
		}
		originalPrice = normalized
	}
	imageList := data.ImageURLs
	if imageList == nil {
		imageList = []string{}
	}
	imageURLs, err := encodeJSON(imageList)
	if err != nil {
		return storage.Product{}, fmt.Errorf("create product: %w", err)
	}
	specs := any(nil)
	if data.Specs != nil {
		encoded, err := encodeJSON(data.Specs)
		if err != nil {
			return storage.Product{}, fmt.Errorf("create product: %w", err)
		}
		specs = encoded
	}

	rowID, now := newRowStamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, category, type, price, originalPrice, grade, imageUrls, description, specs, badge, isAvailable, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.Name,
		data.Category,
		productType,
		price,
		originalPrice,
		nullIfEmpty(data.Grade),
		imageURLs,
		data.Description,
		specs,
		nullIfEmpty(data.Badge),
		boolToInt(data.IsAvailable),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Product{}, fmt.Errorf("create product: %w", storage.ErrAlreadyExists)
		}
		return storage.Product{}, fmt.Errorf("create product: %w", err)
	}
	return s.mustGetProduct(ctx, rowID)
}

// UpdateProduct applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch storage.ProductPatch) (storage.Product, error) {
	if err := s.ready(); err != nil {
		return storage.Product{}, err
	}
	var sets []predicate
	if patch.Name != nil {
		sets = append(sets, predicate{"name", *patch.Name})
	}
	if patch.Category != nil {
		sets = append(sets, predicate{"category", *patch.Category})
	}
	if patch.Type != nil {
		sets = append(sets, predicate{"type", *patch.Type})
	}
	if patch.Price != nil {
		price, err := normalizeAmount(*patch.Price)
		if err != nil {
			return storage.Product{}, fmt.Errorf("update product: %w", err)
		}
		sets = append(sets, predicate{"price", price})
	}
	if patch.OriginalPrice != nil {
		if *patch.OriginalPrice == "" {
			sets = append(sets, predicate{"originalPrice", nil})
		} else {
			price, err := normalizeAmount(*patch.OriginalPrice)
			if err != nil {
				return storage.Product{}, fmt.Errorf("update product: %w", err)
			}
			sets = append(sets, predicate{"originalPrice", price})
		}
	}
	if patch.Grade != nil {
		sets = append(sets, predicate{"grade", nullIfEmpty(*patch.Grade)})
	}
	if patch.ImageURLs != nil {
		encoded, err := encodeJSON(*patch.ImageURLs)
		if err != nil {
			return storage.Product{}, fmt.Errorf("update product: %w", err)
		}
		sets = append(sets, predicate{"imageUrls", encoded})
	}
	if patch.Description != nil {
		sets = append(sets, predicate{"description", *patch.Description})
	}
	if patch.Specs != nil {
		encoded, err := encodeJSON(*patch.Specs)
		if err != nil {
			return storage.Product{}, fmt.Errorf("update product: %w", err)
		}
		sets = append(sets, predicate{"specs", encoded})
	}
	if patch.Badge != nil {
		sets = append(sets, predicate{"badge", nullIfEmpty(*patch.Badge)})
	}
	if patch.IsAvailable != nil {
		sets = append(sets, predicate{"isAvailable", boolToInt(*patch.IsAvailable)})
	}
	if err := s.execUpdate(ctx, "products", sets, id); err != nil {
		return storage.Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.mustGetProduct(ctx, id)
}

// DeleteProduct removes one product row.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// CountProducts returns the number of products matching the filter.
func (s *Store) CountProducts(ctx context.Context, filter storage.ProductFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("products", productPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetProduct(ctx context.Context, id string) (storage.Product, error) {
	product, found, err := s.GetProduct(ctx, id)
	if err != nil {
		return storage.Product{}, err
	}
	if !found {
		return storage.Product{}, storage.ErrNotFound
	}
	return product, nil
}
