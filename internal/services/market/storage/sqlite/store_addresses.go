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

const addressColumns = "id, userId, title, fullName, phone, street, city, state, postalCode, country, isDefault, createdAt, updatedAt"

var addressOrderFields = map[string]bool{
	"userId":    true,
	"title":     true,
	"city":      true,
	"isDefault": true,
	"createdAt": true,
	"updatedAt": true,
}

type addressRow struct {
	ID         string `db:"id"`
	UserID     string `db:"userId"`
	Title      string `db:"title"`
	FullName   string `db:"fullName"`
	Phone      string `db:"phone"`
	Street     string `db:"street"`
	City       string `db:"city"`
	State      string `db:"state"`
	PostalCode string `db:"postalCode"`
	Country    string `db:"country"`
	IsDefault  int    `db:"isDefault"`
	CreatedAt  string `db:"createdAt"`
	UpdatedAt  string `db:"updatedAt"`
}

func (r addressRow) decode() (storage.Address, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.Address{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.Address{}, err
	}
	return storage.Address{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		FullName:   r.FullName,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault != 0,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func addressPredicates(f storage.AddressFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, predicate{"userId", *f.UserID})
	}
	if f.IsDefault != nil {
		preds = append(preds, predicate{"isDefault", boolToInt(*f.IsDefault)})
	}
	return preds
}

// GetAddress returns one address by id; absence is not an error.
func (s *Store) GetAddress(ctx context.Context, id string) (storage.Address, bool, error) {
	if err := s.ready(); err != nil {
		return storage.Address{}, false, err
	}
	var row addressRow
	err := s.db.GetContext(ctx, &row, "SELECT "+addressColumns+" FROM addresses WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Address{}, false, nil
		}
		return storage.Address{}, false, fmt.Errorf("get address: %w", err)
	}
	address, err := row.decode()
	if err != nil {
		return storage.Address{}, false, fmt.Errorf("get address: %w", err)
	}
	return address, true, nil
}

// ListAddresses returns addresses matching the filter.
func (s *Store) ListAddresses(ctx context.Context, filter storage.AddressFilter, opts storage.ListOptions) ([]storage.Address, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("addresses", addressColumns, addressPredicates(filter), opts, addressOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	var rows []addressRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	addresses := make([]storage.Address, 0, len(rows))
	for _, row := range rows {
		address, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list addresses: %w", err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// CreateAddress inserts one address and returns the persisted row.
func (s *Store) CreateAddress(ctx context.Context, data storage.Address) (storage.Address, error) {
	if err := s.ready(); err != nil {
		return storage.Address{}, err
	}
	if strings.TrimSpace(data.UserID) == "" {
		return storage.Address{}, fmt.Errorf("user id is required")
	}
	country := data.Country
	if country == "" {
		country = "India"
	}

	rowID, now := newRowStamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO addresses (id, userId, title, fullName, phone, street, city, state, postalCode, country, isDefault, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.UserID,
		data.Title,
		data.FullName,
		data.Phone,
		data.Street,
		data.City,
		data.State,
		data.PostalCode,
		country,
		boolToInt(data.IsDefault),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return storage.Address{}, fmt.Errorf("create address: %w", err)
	}
	return s.mustGetAddress(ctx, rowID)
}

func addressPatchSets(patch storage.AddressPatch) []predicate {
	var sets []predicate
	if patch.Title != nil {
		sets = append(sets, predicate{"title", *patch.Title})
	}
	if patch.FullName != nil {
		sets = append(sets, predicate{"fullName", *patch.FullName})
	}
	if patch.Phone != nil {
		sets = append(sets, predicate{"phone", *patch.Phone})
	}
	if patch.Street != nil {
		sets = append(sets, predicate{"street", *patch.Street})
	}
	if patch.City != nil {
		sets = append(sets, predicate{"city", *patch.City})
	}
	if patch.State != nil {
		sets = append(sets, predicate{"state", *patch.State})
	}
	if patch.PostalCode != nil {
		sets = append(sets, predicate{"postalCode", *patch.PostalCode})
	}
	if patch.Country != nil {
		sets = append(sets, predicate{"country", *patch.Country})
	}
	if patch.IsDefault != nil {
		sets = append(sets, predicate{"isDefault", boolToInt(*patch.IsDefault)})
	}
	return sets
}

// UpdateAddress applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateAddress(ctx context.Context, id string, patch storage.AddressPatch) (storage.Address, error) {
	if err := s.ready(); err != nil {
		return storage.Address{}, err
	}
	if err := s.execUpdate(ctx, "addresses", addressPatchSets(patch), id); err != nil {
		return storage.Address{}, fmt.Errorf("update address: %w", err)
	}
	return s.mustGetAddress(ctx, id)
}

// UpdateAddresses applies patch to every address matching the filter, with
// no returned rows. Used to clear a user's default flag before setting a
// new one.
func (s *Store) UpdateAddresses(ctx context.Context, filter storage.AddressFilter, patch storage.AddressPatch) error {
	if err := s.ready(); err != nil {
		return err
	}
	sets := addressPatchSets(patch)
	sets = append(sets, predicate{"updatedAt", formatTime(time.Now().UTC())})
	query, args, err := buildUpdateQuery("addresses", sets, addressPredicates(filter))
	if err != nil {
		return fmt.Errorf("update addresses: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update addresses: %w", err)
	}
	return nil
}

// DeleteAddress removes one address row.
func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// CountAddresses returns the number of addresses matching the filter.
func (s *Store) CountAddresses(ctx context.Context, filter storage.AddressFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("addresses", addressPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetAddress(ctx context.Context, id string) (storage.Address, error) {
	address, found, err := s.GetAddress(ctx, id)
	if err != nil {
		return storage.Address{}, err
	}
	if !found {
		return storage.Address{}, storage.ErrNotFound
	}
	return address, nil
}
