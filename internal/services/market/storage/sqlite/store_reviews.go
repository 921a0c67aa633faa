package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

const reviewColumns = "id, rating, comment, createdAt, updatedAt, productId, userId, reviewerName, reviewerImage"

var reviewOrderFields = map[string]bool{
	"rating":    true,
	"productId": true,
	"userId":    true,
	"createdAt": true,
	"updatedAt": true,
}

type reviewRow struct {
	ID            string         `db:"id"`
	Rating        int            `db:"rating"`
	Comment       string         `db:"comment"`
	CreatedAt     string         `db:"createdAt"`
	UpdatedAt     string         `db:"updatedAt"`
	ProductID     string         `db:"productId"`
	UserID        string         `db:"userId"`
	ReviewerName  string         `db:"reviewerName"`
	ReviewerImage sql.NullString `db:"reviewerImage"`
}

func (r reviewRow) decode() (storage.Review, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.Review{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.Review{}, err
	}
	return storage.Review{
		ID:            r.ID,
		ProductID:     r.ProductID,
		UserID:        r.UserID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		ReviewerName:  r.ReviewerName,
		ReviewerImage: fromNull(r.ReviewerImage),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func reviewPredicates(f storage.ReviewFilter) []predicate {
	var preds []predicate
	if f.ProductID != nil {
		preds = append(preds, predicate{"productId", *f.ProductID})
	}
	if f.UserID != nil {
		preds = append(preds, predicate{"userId", *f.UserID})
	}
	return preds
}

// GetReview returns one review by id; absence is not an error.
func (s *Store) GetReview(ctx context.Context, id string) (storage.Review, bool, error) {
	if err := s.ready(); err != nil {
		return storage.Review{}, false, err
	}
	var row reviewRow
	err := s.db.GetContext(ctx, &row, "SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Review{}, false, nil
		}
		return storage.Review{}, false, fmt.Errorf("get review: %w", err)
	}
	review, err := row.decode()
	if err != nil {
		return storage.Review{}, false, fmt.Errorf("get review: %w", err)
	}
	return review, true, nil
}

// ListReviews returns reviews matching the filter.
func (s *Store) ListReviews(ctx context.Context, filter storage.ReviewFilter, opts storage.ListOptions) ([]storage.Review, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("reviews", reviewColumns, reviewPredicates(filter), opts, reviewOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviews := make([]storage.Review, 0, len(rows))
	for _, row := range rows {
		review, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// CreateReview inserts one review and returns the persisted row.
func (s *Store) CreateReview(ctx context.Context, data storage.Review) (storage.Review, error) {
	if err := s.ready(); err != nil {
		return storage.Review{}, err
	}
	if strings.TrimSpace(data.ProductID) == "" {
		return storage.Review{}, fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(data.UserID) == "" {
		return storage.Review{}, fmt.Errorf("user id is required")
	}
	if data.Rating < 1 || data.Rating > 5 {
		return storage.Review{}, fmt.Errorf("rating must be between 1 and 5")
	}

	rowID, now := newRowStamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, rating, comment, createdAt, updatedAt, productId, userId, reviewerName, reviewerImage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.Rating,
		data.Comment,
		formatTime(now),
		formatTime(now),
		data.ProductID,
		data.UserID,
		data.ReviewerName,
		nullIfEmpty(data.ReviewerImage),
	)
	if err != nil {
		return storage.Review{}, fmt.Errorf("create review: %w", err)
	}
	return s.mustGetReview(ctx, rowID)
}

// UpdateReview applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateReview(ctx context.Context, id string, patch storage.ReviewPatch) (storage.Review, error) {
	if err := s.ready(); err != nil {
		return storage.Review{}, err
	}
	var sets []predicate
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return storage.Review{}, fmt.Errorf("rating must be between 1 and 5")
		}
		sets = append(sets, predicate{"rating", *patch.Rating})
	}
	if patch.Comment != nil {
		sets = append(sets, predicate{"comment", *patch.Comment})
	}
	if err := s.execUpdate(ctx, "reviews", sets, id); err != nil {
		return storage.Review{}, fmt.Errorf("update review: %w", err)
	}
	return s.mustGetReview(ctx, id)
}

// DeleteReview removes one review row.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// CountReviews returns the number of reviews matching the filter.
func (s *Store) CountReviews(ctx context.Context, filter storage.ReviewFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("reviews", reviewPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetReview(ctx context.Context, id string) (storage.Review, error) {
	review, found, err := s.GetReview(ctx, id)
	if err != nil {
		return storage.Review{}, err
	}
	if !found {
		return storage.Review{}, storage.ErrNotFound
	}
	return review, nil
}
