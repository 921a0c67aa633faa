package sqlite

import (
	"fmt"
	"strings"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// predicate is one `column = ?` equality condition. Predicates are built as
// an ordered slice so the rendered clause text and the bound argument list
// always traverse in the same order.
type predicate struct {
	column string
	value  any
}

func whereClause(preds []predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, p.column+" = ?")
		args = append(args, p.value)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// orderClause renders ORDER BY terms. Field names are checked against the
// entity's column allow-list before touching query text.
func orderClause(terms []storage.OrderTerm, allowed map[string]bool) (string, error) {
	if len(terms) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		if !allowed[term.Field] {
			return "", fmt.Errorf("unknown order field %q", term.Field)
		}
		direction := "ASC"
		if term.Desc {
			direction = "DESC"
		}
		parts = append(parts, term.Field+" "+direction)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// limitClause renders LIMIT/OFFSET. No Take means no LIMIT at all; OFFSET
// is only meaningful alongside LIMIT.
func limitClause(opts storage.ListOptions) (string, []any) {
	if opts.Take == nil {
		return "", nil
	}
	clause := " LIMIT ?"
	args := []any{*opts.Take}
	if opts.Skip > 0 {
		clause += " OFFSET ?"
		args = append(args, opts.Skip)
	}
	return clause, args
}

// buildListQuery assembles a full SELECT with dynamic WHERE, ORDER BY and
// LIMIT/OFFSET, returning the query text and bound arguments in matching
// order.
func buildListQuery(table, columns string, preds []predicate, opts storage.ListOptions, allowed map[string]bool) (string, []any, error) {
	query := "SELECT " + columns + " FROM " + table
	where, args := whereClause(preds)
	query += where

	order, err := orderClause(opts.Order, allowed)
	if err != nil {
		return "", nil, err
	}
	query += order

	limit, limitArgs := limitClause(opts)
	query += limit
	args = append(args, limitArgs...)

	return query, args, nil
}

// buildCountQuery assembles a COUNT with the same predicate construction as
// buildListQuery.
func buildCountQuery(table string, preds []predicate) (string, []any) {
	query := "SELECT COUNT(*) FROM " + table
	where, args := whereClause(preds)
	return query + where, args
}

// buildUpdateQuery assembles an UPDATE from SET assignments and WHERE
// predicates. Assignments arrive pre-ordered by each entity's fixed patch
// traversal; updatedAt is expected to be among them.
func buildUpdateQuery(table string, sets []predicate, preds []predicate) (string, []any, error) {
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}
	parts := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+len(preds))
	for _, set := range sets {
		parts = append(parts, set.column+" = ?")
		args = append(args, set.value)
	}
	query := "UPDATE " + table + " SET " + strings.Join(parts, ", ")
	where, whereArgs := whereClause(preds)
	query += where
	args = append(args, whereArgs...)
	return query, args, nil
}

// inClause renders `column IN (?, ...)` for a batched secondary lookup.
func inClause(column string, values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return column + " IN (" + strings.Join(placeholders, ", ") + ")", args
}
