package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/cache"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/perf"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductListQuery is a normalized catalog read request. Empty string
// fields mean "any"; a nil Available means both available and sold stock.
type ProductListQuery struct {
	Category  string
	Type      string
	Available *bool
	Page      int
	Limit     int
}

func (q *ProductListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
}

func (q ProductListQuery) cacheKey() string {
	available := "all"
	if q.Available != nil {
		available = strconv.FormatBool(*q.Available)
	}
	category := q.Category
	if category == "" {
		category = "all"
	}
	productType := q.Type
	if productType == "" {
		productType = "all"
	}
	return cache.Key(productKeyPrefix, map[string]string{
		"category":  category,
		"type":      productType,
		"available": available,
		"page":      strconv.Itoa(q.Page),
		"limit":     strconv.Itoa(q.Limit),
	})
}

// ProductView is the catalog shape served to callers: decoded images, a
// primary image fallback, and display fields derived from the row.
type ProductView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Type          string            `json:"type"`
	Price         string            `json:"price"`
	OriginalPrice string            `json:"originalPrice,omitempty"`
	Grade         string            `json:"grade,omitempty"`
	Image         string            `json:"image"`
	Images        []string          `json:"images"`
	Badge         string            `json:"badge,omitempty"`
	Description   string            `json:"description"`
	Specs         map[string]string `json:"specs"`
	Status        string            `json:"status"`
	ListingDate   string            `json:"listingDate"`
	SKU           string            `json:"sku"`
}

// Pagination echoes the requested page window.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// ProductList is one cached page of the catalog.
type ProductList struct {
	Products   []ProductView `json:"products"`
	Pagination Pagination    `json:"pagination"`
}

const placeholderImage = "/images/products/background.jpg"

func toProductView(p storage.Product) ProductView {
	images := p.ImageURLs
	primary := placeholderImage
	if len(images) > 0 {
		primary = images[0]
	}
	specs := p.Specs
	if specs == nil {
		specs = map[string]string{}
	}
	status := "Out of Stock"
	if p.IsAvailable {
		status = "In Stock"
	}
	return ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Type:          p.Type,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Grade:         p.Grade,
		Image:         primary,
		Images:        images,
		Badge:         p.Badge,
		Description:   p.Description,
		Specs:         specs,
		Status:        status,
		ListingDate:   p.CreatedAt.UTC().Format("2006-01-02"),
		SKU:           productSKU(p),
	}
}

func productSKU(p storage.Product) string {
	category := strings.ToUpper(p.Category)
	if len(category) > 2 {
		category = category[:2]
	}
	id := p.ID
	if len(id) > 3 {
		id = id[:3]
	}
	return fmt.Sprintf("KW-%s-%s", category, id)
}

// ListProducts serves one catalog page through the response cache. The
// returned bool reports whether the page came from cache.
func (s *Service) ListProducts(ctx context.Context, query ProductListQuery) (ProductList, bool, error) {
	ctx, span := s.tracer.Start(ctx, "market.ListProducts")
	defer span.End()

	timer := perf.NewTimer("ListProducts")
	defer timer.End()

	query.normalize()
	key := query.cacheKey()
	timer.Checkpoint("parse params")

	if cached, ok := s.cache.Get(key); ok {
		if list, ok := cached.(ProductList); ok {
			timer.Checkpoint("cache hit")
			span.SetAttributes(attribute.String("cache.status", "hit"))
			return list, true, nil
		}
	}
	timer.Checkpoint("cache miss")
	span.SetAttributes(attribute.String("cache.status", "miss"))

	productFilter := storage.ProductFilter{}
	if query.Category != "" {
		productFilter.Category = &query.Category
	}
	if query.Type != "" {
		productFilter.Type = &query.Type
	}
	if query.Available != nil {
		productFilter.IsAvailable = query.Available
	}

	products, err := s.store.ListProducts(ctx, productFilter, storage.ListOptions{
		Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
		Take:  storage.Take(query.Limit),
		Skip:  (query.Page - 1) * query.Limit,
	})
	if err != nil {
		return ProductList{}, false, err
	}
	timer.Checkpoint("store query")

	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, toProductView(product))
	}
	timer.Checkpoint("transform")

	list := ProductList{
		Products: views,
		Pagination: Pagination{
			Page:    query.Page,
			Limit:   query.Limit,
			Total:   len(views),
			HasMore: len(views) == query.Limit,
		},
	}
	s.cache.Set(key, list, s.ttl)
	timer.Checkpoint("cache write")

	return list, false, nil
}

// GetProduct returns one product; absence is reported, not an error.
func (s *Service) GetProduct(ctx context.Context, id string) (storage.Product, bool, error) {
	return s.store.GetProduct(ctx, id)
}

// CreateProduct inserts a product and drops cached catalog pages.
func (s *Service) CreateProduct(ctx context.Context, data storage.Product) (storage.Product, error) {
	product, err := s.store.CreateProduct(ctx, data)
	if err != nil {
		return storage.Product{}, err
	}
	s.invalidate(productKeyPrefix)
	return product, nil
}

// UpdateProduct patches a product and drops cached catalog pages.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch storage.ProductPatch) (storage.Product, error) {
	product, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return storage.Product{}, err
	}
	s.invalidate(productKeyPrefix)
	return product, nil
}

// DeleteProduct removes a product and drops cached catalog pages.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(productKeyPrefix)
	return nil
}
