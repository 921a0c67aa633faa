package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

const paymentMethodColumns = "id, userId, type, cardLast4, cardType, cardHolder, expiryMonth, expiryYear, upiId, nickname, isDefault, createdAt, updatedAt"

var paymentMethodOrderFields = map[string]bool{
	"userId":    true,
	"type":      true,
	"isDefault": true,
	"createdAt": true,
	"updatedAt": true,
}

type paymentMethodRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"userId"`
	Type        string         `db:"type"`
	CardLast4   sql.NullString `db:"cardLast4"`
	CardType    sql.NullString `db:"cardType"`
	CardHolder  sql.NullString `db:"cardHolder"`
	ExpiryMonth sql.NullInt64  `db:"expiryMonth"`
	ExpiryYear  sql.NullInt64  `db:"expiryYear"`
	UpiID       sql.NullString `db:"upiId"`
	Nickname    sql.NullString `db:"nickname"`
	IsDefault   int            `db:"isDefault"`
	CreatedAt   string         `db:"createdAt"`
	UpdatedAt   string         `db:"updatedAt"`
}

func (r paymentMethodRow) decode() (storage.PaymentMethod, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	return storage.PaymentMethod{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        r.Type,
		CardLast4:   fromNull(r.CardLast4),
		CardType:    fromNull(r.CardType),
		CardHolder:  fromNull(r.CardHolder),
		ExpiryMonth: fromNullInt(r.ExpiryMonth),
		ExpiryYear:  fromNullInt(r.ExpiryYear),
		UpiID:       fromNull(r.UpiID),
		Nickname:    fromNull(r.Nickname),
		IsDefault:   r.IsDefault != 0,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func paymentMethodPredicates(f storage.PaymentMethodFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, predicate{"userId", *f.UserID})
	}
	if f.Type != nil {
		preds = append(preds, predicate{"type", *f.Type})
	}
	if f.IsDefault != nil {
		preds = append(preds, predicate{"isDefault", boolToInt(*f.IsDefault)})
	}
	return preds
}

// GetPaymentMethod returns one payment method by id; absence is not an error.
func (s *Store) GetPaymentMethod(ctx context.Context, id string) (storage.PaymentMethod, bool, error) {
	if err := s.ready(); err != nil {
		return storage.PaymentMethod{}, false, err
	}
	var row paymentMethodRow
	err := s.db.GetContext(ctx, &row, "SELECT "+paymentMethodColumns+" FROM payment_methods WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PaymentMethod{}, false, nil
		}
		return storage.PaymentMethod{}, false, fmt.Errorf("get payment method: %w", err)
	}
	method, err := row.decode()
	if err != nil {
		return storage.PaymentMethod{}, false, fmt.Errorf("get payment method: %w", err)
	}
	return method, true, nil
}

// ListPaymentMethods returns payment methods matching the filter.
func (s *Store) ListPaymentMethods(ctx context.Context, filter storage.PaymentMethodFilter, opts storage.ListOptions) ([]storage.PaymentMethod, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("payment_methods", paymentMethodColumns, paymentMethodPredicates(filter), opts, paymentMethodOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	var rows []paymentMethodRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	methods := make([]storage.PaymentMethod, 0, len(rows))
	for _, row := range rows {
		method, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list payment methods: %w", err)
		}
		methods = append(methods, method)
	}
	return methods, nil
}

// CreatePaymentMethod inserts one payment method and returns the persisted row.
func (s *Store) CreatePaymentMethod(ctx context.Context, data storage.PaymentMethod) (storage.PaymentMethod, error) {
	if err := s.ready(); err != nil {
		return storage.PaymentMethod{}, err
	}
	if strings.TrimSpace(data.UserID) == "" {
		return storage.PaymentMethod{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(data.Type) == "" {
		return storage.PaymentMethod{}, fmt.Errorf("type is required")
	}

	var expiryMonth, expiryYear any
	if data.ExpiryMonth != 0 {
		expiryMonth = data.ExpiryMonth
	}
	if data.ExpiryYear != 0 {
		expiryYear = data.ExpiryYear
	}

	rowID, now := newRowStamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_methods (id, userId, type, cardLast4, cardType, cardHolder, expiryMonth, expiryYear, upiId, nickname, isDefault, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.UserID,
		data.Type,
		nullIfEmpty(data.CardLast4),
		nullIfEmpty(data.CardType),
		nullIfEmpty(data.CardHolder),
		expiryMonth,
		expiryYear,
		nullIfEmpty(data.UpiID),
		nullIfEmpty(data.Nickname),
		boolToInt(data.IsDefault),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return storage.PaymentMethod{}, fmt.Errorf("create payment method: %w", err)
	}
	return s.mustGetPaymentMethod(ctx, rowID)
}

func paymentMethodPatchSets(patch storage.PaymentMethodPatch) []predicate {
	var sets []predicate
	if patch.Nickname != nil {
		sets = append(sets, predicate{"nickname", nullIfEmpty(*patch.Nickname)})
	}
	if patch.IsDefault != nil {
		sets = append(sets, predicate{"isDefault", boolToInt(*patch.IsDefault)})
	}
	return sets
}

// UpdatePaymentMethod applies the set fields of patch and returns the
// re-read row.
func (s *Store) UpdatePaymentMethod(ctx context.Context, id string, patch storage.PaymentMethodPatch) (storage.PaymentMethod, error) {
	if err := s.ready(); err != nil {
		return storage.PaymentMethod{}, err
	}
	if err := s.execUpdate(ctx, "payment_methods", paymentMethodPatchSets(patch), id); err != nil {
		return storage.PaymentMethod{}, fmt.Errorf("update payment method: %w", err)
	}
	return s.mustGetPaymentMethod(ctx, id)
}

// UpdatePaymentMethods applies patch to every payment method matching the
// filter. Used to clear a user's default flag before setting a new one.
func (s *Store) UpdatePaymentMethods(ctx context.Context, filter storage.PaymentMethodFilter, patch storage.PaymentMethodPatch) error {
	if err := s.ready(); err != nil {
		return err
	}
	sets := paymentMethodPatchSets(patch)
	sets = append(sets, predicate{"updatedAt", formatTime(time.Now().UTC())})
	query, args, err := buildUpdateQuery("payment_methods", sets, paymentMethodPredicates(filter))
	if err != nil {
		return fmt.Errorf("update payment methods: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update payment methods: %w", err)
	}
	return nil
}

// DeletePaymentMethod removes one payment method row.
func (s *Store) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM payment_methods WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	return nil
}

// CountPaymentMethods returns the number of payment methods matching the filter.
func (s *Store) CountPaymentMethods(ctx context.Context, filter storage.PaymentMethodFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("payment_methods", paymentMethodPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count payment methods: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetPaymentMethod(ctx context.Context, id string) (storage.PaymentMethod, error) {
	method, found, err := s.GetPaymentMethod(ctx, id)
	if err != nil {
		return storage.PaymentMethod{}, err
	}
	if !found {
		return storage.PaymentMethod{}, storage.ErrNotFound
	}
	return method, nil
}
