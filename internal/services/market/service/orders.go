package service

import (
	"context"
	"strconv"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/cache"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/perf"
	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
	"go.opentelemetry.io/otel/attribute"
)

// OrderListQuery is a normalized order read request.
type OrderListQuery struct {
	UserID        string
	PaymentStatus string
	Page          int
	Limit         int
	IncludeUser   bool
}

func (q *OrderListQuery) normalize() {
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

func (q OrderListQuery) cacheKey() string {
	userID := q.UserID
	if userID == "" {
		userID = "all"
	}
	paymentStatus := q.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "all"
	}
	return cache.Key(orderKeyPrefix, map[string]string{
		"user":    userID,
		"payment": paymentStatus,
		"include": strconv.FormatBool(q.IncludeUser),
		"page":    strconv.Itoa(q.Page),
		"limit":   strconv.Itoa(q.Limit),
	})
}

// OrderList is one cached page of orders.
type OrderList struct {
	Orders     []storage.Order `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// ListOrders serves one order page through the response cache, newest
// first. The returned bool reports whether the page came from cache.
func (s *Service) ListOrders(ctx context.Context, query OrderListQuery) (OrderList, bool, error) {
	ctx, span := s.tracer.Start(ctx, "market.ListOrders")
	defer span.End()

	timer := perf.NewTimer("ListOrders")
	defer timer.End()

	query.normalize()
	key := query.cacheKey()
	timer.Checkpoint("parse params")

	if cached, ok := s.cache.Get(key); ok {
		if list, ok := cached.(OrderList); ok {
			timer.Checkpoint("cache hit")
			span.SetAttributes(attribute.String("cache.status", "hit"))
			return list, true, nil
		}
	}
	timer.Checkpoint("cache miss")
	span.SetAttributes(attribute.String("cache.status", "miss"))

	filter := storage.OrderFilter{}
	if query.UserID != "" {
		filter.UserID = &query.UserID
	}
	if query.PaymentStatus != "" {
		filter.PaymentStatus = &query.PaymentStatus
	}

	orders, err := s.store.ListOrders(ctx, filter, storage.OrderListOptions{
		ListOptions: storage.ListOptions{
			Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
			Take:  storage.Take(query.Limit),
			Skip:  (query.Page - 1) * query.Limit,
		},
		IncludeUser: query.IncludeUser,
	})
	if err != nil {
		return OrderList{}, false, err
	}
	timer.Checkpoint("store query")

	list := OrderList{
		Orders: orders,
		Pagination: Pagination{
			Page:    query.Page,
			Limit:   query.Limit,
			Total:   len(orders),
			HasMore: len(orders) == query.Limit,
		},
	}
	s.cache.Set(key, list, s.ttl)
	timer.Checkpoint("cache write")

	return list, false, nil
}

// GetOrder returns one order, optionally with its user attached.
func (s *Service) GetOrder(ctx context.Context, id string, includeUser bool) (storage.Order, bool, error) {
	return s.store.GetOrder(ctx, id, includeUser)
}

// CreateOrder inserts an order and drops cached order pages.
func (s *Service) CreateOrder(ctx context.Context, data storage.Order) (storage.Order, error) {
	order, err := s.store.CreateOrder(ctx, data)
	if err != nil {
		return storage.Order{}, err
	}
	s.invalidate(orderKeyPrefix)
	return order, nil
}

// UpdateOrder patches an order (payment/fulfillment progress) and drops
// cached order pages.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch storage.OrderPatch) (storage.Order, error) {
	order, err := s.store.UpdateOrder(ctx, id, patch)
	if err != nil {
		return storage.Order{}, err
	}
	s.invalidate(orderKeyPrefix)
	return order, nil
}
