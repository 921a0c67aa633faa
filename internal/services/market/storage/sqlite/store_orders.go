package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

const orderColumns = "id, userId, items, totalPrice, paymentStatus, fulfillmentStatus, createdAt, updatedAt"

var orderOrderFields = map[string]bool{
	"userId":            true,
	"totalPrice":        true,
	"paymentStatus":     true,
	"fulfillmentStatus": true,
	"createdAt":         true,
	"updatedAt":         true,
}

type orderRow struct {
	ID                string `db:"id"`
	UserID            string `db:"userId"`
	Items             string `db:"items"`
	TotalPrice        string `db:"totalPrice"`
	PaymentStatus     string `db:"paymentStatus"`
	FulfillmentStatus string `db:"fulfillmentStatus"`
	CreatedAt         string `db:"createdAt"`
	UpdatedAt         string `db:"updatedAt"`
}

func (r orderRow) decode() (storage.Order, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.Order{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.Order{}, err
	}
	items, err := decodeOrderItems(r.Items)
	if err != nil {
		return storage.Order{}, err
	}
	return storage.Order{
		ID:                r.ID,
		UserID:            r.UserID,
		Items:             items,
		TotalPrice:        r.TotalPrice,
		PaymentStatus:     r.PaymentStatus,
		FulfillmentStatus: r.FulfillmentStatus,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

func orderPredicates(f storage.OrderFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, predicate{"userId", *f.UserID})
	}
	if f.PaymentStatus != nil {
		preds = append(preds, predicate{"paymentStatus", *f.PaymentStatus})
	}
	if f.FulfillmentStatus != nil {
		preds = append(preds, predicate{"fulfillmentStatus", *f.FulfillmentStatus})
	}
	return preds
}

// GetOrder returns one order by id, optionally with its user attached.
func (s *Store) GetOrder(ctx context.Context, id string, includeUser bool) (storage.Order, bool, error) {
	if err := s.ready(); err != nil {
		return storage.Order{}, false, err
	}
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Order{}, false, nil
		}
		return storage.Order{}, false, fmt.Errorf("get order: %w", err)
	}
	order, err := row.decode()
	if err != nil {
		return storage.Order{}, false, fmt.Errorf("get order: %w", err)
	}
	if includeUser {
		users, err := s.batchUsers(ctx, []string{order.UserID})
		if err != nil {
			return storage.Order{}, false, fmt.Errorf("get order: %w", err)
		}
		if user, ok := users[order.UserID]; ok {
			user := user
			order.User = &user
		}
	}
	return order, true, nil
}

// ListOrders returns orders matching the filter. With IncludeUser the
// related users are fetched in one batched IN query, not once per row.
func (s *Store) ListOrders(ctx context.Context, filter storage.OrderFilter, opts storage.OrderListOptions) ([]storage.Order, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("orders", orderColumns, orderPredicates(filter), opts.ListOptions, orderOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]storage.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, order)
	}
	if opts.IncludeUser && len(orders) > 0 {
		userIDs := make([]string, 0, len(orders))
		for _, order := range orders {
			userIDs = append(userIDs, order.UserID)
		}
		users, err := s.batchUsers(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		attachOrderUsers(orders, users)
	}
	return orders, nil
}

func attachOrderUsers(orders []storage.Order, users map[string]storage.User) {
	for i := range orders {
		if user, ok := users[orders[i].UserID]; ok {
			user := user
			orders[i].User = &user
		}
	}
}

// CreateOrder inserts one order and returns the persisted row.
func (s *Store) CreateOrder(ctx context.Context, data storage.Order) (storage.Order, error) {
	if err := s.ready(); err != nil {
		return storage.Order{}, err
	}
	if strings.TrimSpace(data.UserID) == "" {
		return storage.Order{}, fmt.Errorf("user id is required")
	}
	if len(data.Items) == 0 {
		return storage.Order{}, fmt.Errorf("order items are required")
	}
	totalPrice, err := normalizeAmount(data.TotalPrice)
	if err != nil {
		return storage.Order{}, fmt.Errorf("create order: %w", err)
	}
	items, err := encodeJSON(data.Items)
	if err != nil {
		return storage.Order{}, fmt.Errorf("create order: %w", err)
	}
	paymentStatus := data.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = storage.PaymentStatusPending
	}
	fulfillmentStatus := data.FulfillmentStatus
	if fulfillmentStatus == "" {
		fulfillmentStatus = "Processing"
	}

	rowID, now := newRowStamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, userId, items, totalPrice, paymentStatus, fulfillmentStatus, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.UserID,
		items,
		totalPrice,
		paymentStatus,
		fulfillmentStatus,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return storage.Order{}, fmt.Errorf("create order: %w", err)
	}
	return s.mustGetOrder(ctx, rowID)
}

// UpdateOrder applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateOrder(ctx context.Context, id string, patch storage.OrderPatch) (storage.Order, error) {
	if err := s.ready(); err != nil {
		return storage.Order{}, err
	}
	var sets []predicate
	if patch.Items != nil {
		encoded, err := encodeJSON(*patch.Items)
		if err != nil {
			return storage.Order{}, fmt.Errorf("update order: %w", err)
		}
		sets = append(sets, predicate{"items", encoded})
	}
	if patch.TotalPrice != nil {
		totalPrice, err := normalizeAmount(*patch.TotalPrice)
		if err != nil {
			return storage.Order{}, fmt.Errorf("update order: %w", err)
		}
		sets = append(sets, predicate{"totalPrice", totalPrice})
	}
	if patch.PaymentStatus != nil {
		sets = append(sets, predicate{"paymentStatus", *patch.PaymentStatus})
	}
	if patch.FulfillmentStatus != nil {
		sets = append(sets, predicate{"fulfillmentStatus", *patch.FulfillmentStatus})
	}
	if err := s.execUpdate(ctx, "orders", sets, id); err != nil {
		return storage.Order{}, fmt.Errorf("update order: %w", err)
	}
	return s.mustGetOrder(ctx, id)
}

// DeleteOrder removes one order row.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// CountOrders returns the number of orders matching the filter.
func (s *Store) CountOrders(ctx context.Context, filter storage.OrderFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("orders", orderPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// SumOrderTotals returns the revenue sum across all orders. The decimal
// text column is cast inside SQLite; this aggregate is the one place an
// approximate value is acceptable (dashboard reporting only).
func (s *Store) SumOrderTotals(ctx context.Context) (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var sum float64
	err := s.db.GetContext(ctx, &sum, "SELECT COALESCE(SUM(CAST(totalPrice AS REAL)), 0) FROM orders")
	if err != nil {
		return 0, fmt.Errorf("sum order totals: %w", err)
	}
	return sum, nil
}

func (s *Store) mustGetOrder(ctx context.Context, id string) (storage.Order, error) {
	order, found, err := s.GetOrder(ctx, id, false)
	if err != nil {
		return storage.Order{}, err
	}
	if !found {
		return storage.Order{}, storage.ErrNotFound
	}
	return order, nil
}
