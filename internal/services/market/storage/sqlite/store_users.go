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

const userColumns = "id, fullName, email, phone, profilePicture, passwordHash, role, status, rating, createdAt, updatedAt"

var userOrderFields = map[string]bool{
	"fullName":  true,
	"email":     true,
	"role":      true,
	"status":    true,
	"rating":    true,
	"createdAt": true,
	"updatedAt": true,
}

type userRow struct {
	ID             string         `db:"id"`
	FullName       string         `db:"fullName"`
	Email          string         `db:"email"`
	Phone          sql.NullString `db:"phone"`
	ProfilePicture sql.NullString `db:"profilePicture"`
	PasswordHash   string         `db:"passwordHash"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	Rating         int            `db:"rating"`
	CreatedAt      string         `db:"createdAt"`
	UpdatedAt      string         `db:"updatedAt"`
}

func (r userRow) decode() (storage.User, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return storage.User{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return storage.User{}, err
	}
	return storage.User{
		ID:             r.ID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          fromNull(r.Phone),
		ProfilePicture: fromNull(r.ProfilePicture),
		PasswordHash:   r.PasswordHash,
		Role:           r.Role,
		Status:         r.Status,
		Rating:         r.Rating,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func userPredicates(f storage.UserFilter) []predicate {
	var preds []predicate
	if f.Role != nil {
		preds = append(preds, predicate{"role", *f.Role})
	}
	if f.Status != nil {
		preds = append(preds, predicate{"status", *f.Status})
	}
	return preds
}

// GetUser returns one user by id; absence is not an error.
func (s *Store) GetUser(ctx context.Context, id string) (storage.User, bool, error) {
	return s.getUserBy(ctx, "id", id)
}

// GetUserByEmail returns one user by their unique email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.User, bool, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (storage.User, bool, error) {
	if err := s.ready(); err != nil {
		return storage.User{}, false, err
	}
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, false, nil
		}
		return storage.User{}, false, fmt.Errorf("get user: %w", err)
	}
	user, err := row.decode()
	if err != nil {
		return storage.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return user, true, nil
}

// ListUsers returns users matching the filter.
func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter, opts storage.ListOptions) ([]storage.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, args, err := buildListQuery("users", userColumns, userPredicates(filter), opts, userOrderFields)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]storage.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// CreateUser inserts one user and returns the persisted row. A duplicate
// email reports storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, data storage.User) (storage.User, error) {
	if err := s.ready(); err != nil {
		return storage.User{}, err
	}
	email := strings.TrimSpace(data.Email)
	if email == "" {
		return storage.User{}, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(data.FullName) == "" {
		return storage.User{}, fmt.Errorf("full name is required")
	}
	if data.PasswordHash == "" {
		return storage.User{}, fmt.Errorf("password hash is required")
	}
	role := data.Role
	if role == "" {
		role = storage.RoleUser
	}
	status := data.Status
	if status == "" {
		status = storage.UserStatusActive
	}
	rating := data.Rating
	if rating == 0 {
		rating = 5
	}

	rowID, now := newRowStamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, fullName, email, phone, profilePicture, passwordHash, role, status, rating, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID,
		data.FullName,
		email,
		nullIfEmpty(data.Phone),
		nullIfEmpty(data.ProfilePicture),
		data.PasswordHash,
		role,
		status,
		rating,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.User{}, fmt.Errorf("create user: %w", storage.ErrAlreadyExists)
		}
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}
	return s.mustGetUser(ctx, rowID)
}

// UpdateUser applies the set fields of patch and returns the re-read row.
func (s *Store) UpdateUser(ctx context.Context, id string, patch storage.UserPatch) (storage.User, error) {
	if err := s.ready(); err != nil {
		return storage.User{}, err
	}
	var sets []predicate
	if patch.FullName != nil {
		sets = append(sets, predicate{"fullName", *patch.FullName})
	}
	if patch.Phone != nil {
		sets = append(sets, predicate{"phone", nullIfEmpty(*patch.Phone)})
	}
	if patch.ProfilePicture != nil {
		sets = append(sets, predicate{"profilePicture", nullIfEmpty(*patch.ProfilePicture)})
	}
	if patch.PasswordHash != nil {
		sets = append(sets, predicate{"passwordHash", *patch.PasswordHash})
	}
	if patch.Role != nil {
		sets = append(sets, predicate{"role", *patch.Role})
	}
	if patch.Status != nil {
		sets = append(sets, predicate{"status", *patch.Status})
	}
	if patch.Rating != nil {
		sets = append(sets, predicate{"rating", *patch.Rating})
	}
	if err := s.execUpdate(ctx, "users", sets, id); err != nil {
		return storage.User{}, fmt.Errorf("update user: %w", err)
	}
	return s.mustGetUser(ctx, id)
}

// DeleteUser removes one user row. Deletion is physical.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CountUsers returns the number of users matching the filter.
func (s *Store) CountUsers(ctx context.Context, filter storage.UserFilter) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	query, args := buildCountQuery("users", userPredicates(filter))
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Store) mustGetUser(ctx context.Context, id string) (storage.User, error) {
	user, found, err := s.GetUser(ctx, id)
	if err != nil {
		return storage.User{}, err
	}
	if !found {
		return storage.User{}, storage.ErrNotFound
	}
	return user, nil
}

// execUpdate runs a SET-clause update against one row by id, always
// refreshing updatedAt. id and createdAt never appear among the sets.
func (s *Store) execUpdate(ctx context.Context, table string, sets []predicate, id string) error {
	sets = append(sets, predicate{"updatedAt", formatTime(time.Now().UTC())})
	query, args, err := buildUpdateQuery(table, sets, []predicate{{"id", id}})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// batchUsers fetches the users for a set of foreign keys with one query.
func (s *Store) batchUsers(ctx context.Context, userIDs []string) (map[string]storage.User, error) {
	distinct := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true
		distinct = append(distinct, userID)
	}
	if len(distinct) == 0 {
		return map[string]storage.User{}, nil
	}

	clause, args := inClause("id", distinct)
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+userColumns+" FROM users WHERE "+clause, args...); err != nil {
		return nil, fmt.Errorf("batch users: %w", err)
	}
	users := make(map[string]storage.User, len(rows))
	for _, row := range rows {
		user, err := row.decode()
		if err != nil {
			return nil, fmt.Errorf("batch users: %w", err)
		}
		users[user.ID] = user
	}
	return users, nil
}
