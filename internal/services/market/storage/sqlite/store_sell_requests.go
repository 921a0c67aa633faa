package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

const sellRequestColumns = "id, userId, fullName, email, category, title, description, price, contactMethod, contactDetail, imageUrls, status, createdAt, updatedAt"

var sellRequestOrderFields = map[string]bool{
	"userId":    true,
	"category":  true,
	"title":     true,
	"price":     true,
	"status":    true,
	"createdAt": true,
	"updatedAt": true,
}

type sellRequestRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"userId"`
	FullName      string         `db:"fullName"`
	Email         string         `db:"email"`
	Category      string         `db:"category"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Price         string         `db:"price"`
	ContactMethod string         `db:"contactMethod"`
	ContactDetail sql.NullString `db:"contactDetail"`
	ImageURLs     string         `db:"imageUrls"`
	Status        string         `db:"status"`
	CreatedAt     string         `db:"createdAt"`
	UpdatedAt     string         `db:"updatedAt"`
}

func (r sellRequestRow) decode() (storage.SellRequest, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.SellRequest{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.SellRequest{}, err
	}
	imageURLs, err := decodeStringList(r.ImageURLs)
	if err != nil {
		return storage.SellRequest{}, err
	}
	return storage.SellRequest{
		ID:            r.ID,
		UserID:        r.UserID,
		FullName:      r.FullName,
		Email:         r.Email,
		Category:      r.Category,
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		ContactMethod: r.ContactMethod,
		ContactDetail: fromNull(r.ContactDetail),
		ImageURLs:     imageURLs,
		Status:        r.Status,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func sellRequestPredicates(f storage.SellRequestFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, predicate{"userId", *f.UserID})
	}
	if f.Status != nil {
		preds = append(preds, predicate{"status", *f.Status})
	}
	return preds
}

// GetSellRequest returns one sell request by id, optionally with its user.
func (s *Store) GetSellRequest(ctx context.Context, id string, includeUser bool) (storage.SellRequest, bool, error) {
	if err := s.ready(); err != nil {
		return storage.SellRequest{}, false, err
	}
	var row sellRequestRow
	err := s.db.GetContext(ctx, &row, "SELECT "+sellRequestColumns+" FROM sell_requests WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SellRequest{}, false, nil
		}
		return storage.SellRequest{}, false, fmt.Errorf("get sell request: %w", err)
	}
	request, err := row.decode()
	if err != nil {
		return storage.SellRequest{}, false, fmt.Errorf("get sell request: %w", err)
	}
	if includeUser {
		users, err := s.batchUsers(ctx, []string{request.UserID})
		if err != nil {
			return storage.SellRequest{}, false, fmt.Errorf("get sell request: %w", err)
		}
		if user, ok := users[request.UserID]; ok {
			user := user
			request.User = &user
		}
	}
	return request, true, nil
}

// ListSellRequests returns sell requests matching the filter, batching the
// related user lookup when IncludeUser is set.
func (s *Store) ListSellRequests(ctx context.Context, filter storage.SellRequestFilter, opts storage.SellRequestListOptions) ([]storage.SellRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("sell_requests", sellRequestColumns, sellRequestPredicates(filter), opts.ListOptions, sellRequestOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list sell requests: %w", err)
	}
	var rows []sellRequestRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sell requests: %w", err)
	}
	requests := make([]storage.SellRequest, 0, len(rows))
	for _, row := range rows {
		request, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list sell requests: %w", err)
		}
		requests = append(requests, request)
	}
	if opts.IncludeUser && len(requests) > 0 {
		userIDs := make([]string, 0, len(requests))
		for _, request := range requests {
			userIDs = append(userIDs, request.UserID)
		}
		users, err := s.batchUsers(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("list sell requests: %w", err)
		}
		for i := range requests {
			if user, ok := users[requests[i].UserID]; ok {
				user := user
				requests[i].User = &user
			}
		}
	}
	return requests, nil
}

// CreateSellRequest inserts one sell request and returns the persisted row.
// New requests always start Pending.
func (s *Store) CreateSellRequest(ctx context.Context, data storage.SellRequest) (storage.SellRequest, error) {
	if err := s.ready(); err != nil {
		return storage.SellRequest{}, err
	}
	if strings.TrimSpace(data.UserID) == "" {
		return storage.SellRequest{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(data.Title) == "" {
		return storage.SellRequest{}, fmt.Errorf("title is required")
	}
	price, err := normalizeAmount(data.Price)
	if err != nil {
		return storage.SellRequest{}, fmt.Errorf("create sell request: %w", err)
	}
	imageList := data.ImageURLs
	if imageList == nil {
		imageList = []string{}
	}
	imageURLs, err := encodeJSON(imageList)
	if err != nil {
		return storage.SellRequest{}, fmt.Errorf("create sell request: %w", err)
	}

	rowID, now := newRowStamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sell_requests (id, userId, fullName, email, category, title, description, price, contactMethod, contactDetail, imageUrls, status, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.UserID,
		data.FullName,
		data.Email,
		data.Category,
		data.Title,
		data.Description,
		price,
		data.ContactMethod,
		nullIfEmpty(data.ContactDetail),
		imageURLs,
		storage.SellRequestPending,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return storage.SellRequest{}, fmt.Errorf("create sell request: %w", err)
	}
	return s.mustGetSellRequest(ctx, rowID)
}

// UpdateSellRequest applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateSellRequest(ctx context.Context, id string, patch storage.SellRequestPatch) (storage.SellRequest, error) {
	if err := s.ready(); err != nil {
		return storage.SellRequest{}, err
	}
	var sets []predicate
	if patch.Title != nil {
		sets = append(sets, predicate{"title", *patch.Title})
	}
	if patch.Description != nil {
		sets = append(sets, predicate{"description", *patch.Description})
	}
	if patch.Price != nil {
		price, err := normalizeAmount(*patch.Price)
		if err != nil {
			return storage.SellRequest{}, fmt.Errorf("update sell request: %w", err)
		}
		sets = append(sets, predicate{"price", price})
	}
	if patch.ContactDetail != nil {
		sets = append(sets, predicate{"contactDetail", nullIfEmpty(*patch.ContactDetail)})
	}
	if patch.Status != nil {
		sets = append(sets, predicate{"status", *patch.Status})
	}
	if err := s.execUpdate(ctx, "sell_requests", sets, id); err != nil {
		return storage.SellRequest{}, fmt.Errorf("update sell request: %w", err)
	}
	return s.mustGetSellRequest(ctx, id)
}

// DeleteSellRequest removes one sell request row.
func (s *Store) DeleteSellRequest(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sell_requests WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete sell request: %w", err)
	}
	return nil
}

// CountSellRequests returns the number of sell requests matching the filter.
func (s *Store) CountSellRequests(ctx context.Context, filter storage.SellRequestFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("sell_requests", sellRequestPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count sell requests: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetSellRequest(ctx context.Context, id string) (storage.SellRequest, error) {
	request, found, err := s.GetSellRequest(ctx, id, false)
	if err != nil {
		return storage.SellRequest{}, err
	}
	if !found {
		return storage.SellRequest{}, storage.ErrNotFound
	}
	return request, nil
}
