package sqlite

import (
	"reflect"
	"testing"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

func TestWhereClauseOrdering(t *testing.T) {
	clause, args := whereClause([]predicate{
		{"category", "Cricket"},
		{"type", "new"},
		{"isAvailable", 1},
	})
	if clause != " WHERE category = ? AND type = ? AND isAvailable = ?" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"Cricket", "new", 1}) {
		t.Fatalf("unexpected args %v", args)
	}

	clause, args = whereClause(nil)
	if clause != "" || args != nil {
		t.Fatalf("expected empty clause for no predicates, got %q", clause)
	}
}

func TestOrderClauseAllowList(t *testing.T) {
	allowed := map[string]bool{"createdAt": true, "price": true}

	clause, err := orderClause([]storage.OrderTerm{
		{Field: "createdAt", Desc: true},
		{Field: "price"},
	}, allowed)
	if err != nil {
		t.Fatalf("order clause: %v", err)
	}
	if clause != " ORDER BY createdAt DESC, price ASC" {
		t.Fatalf("unexpected clause %q", clause)
	}

	if _, err := orderClause([]storage.OrderTerm{{Field: "name; --"}}, allowed); err == nil {
		t.Fatal("expected error for disallowed field")
	}
}

func TestLimitClause(t *testing.T) {
	clause, args := limitClause(storage.ListOptions{})
	if clause != "" || args != nil {
		t.Fatalf("expected no limit without Take, got %q", clause)
	}

	clause, args = limitClause(storage.ListOptions{Take: storage.Take(20)})
	if clause != " LIMIT ?" || !reflect.DeepEqual(args, []any{20}) {
		t.Fatalf("unexpected limit %q %v", clause, args)
	}

	clause, args = limitClause(storage.ListOptions{Take: storage.Take(20), Skip: 40})
	if clause != " LIMIT ? OFFSET ?" || !reflect.DeepEqual(args, []any{20, 40}) {
		t.Fatalf("unexpected limit %q %v", clause, args)
	}
}

func TestBuildListQuery(t *testing.T) {
	category := "Cricket"
	query, args, err := buildListQuery("products", "id, name",
		[]predicate{{"category", category}},
		storage.ListOptions{
			Order: []storage.OrderTerm{{Field: "createdAt", Desc: true}},
			Take:  storage.Take(10),
			Skip:  20,
		},
		map[string]bool{"createdAt": true},
	)
	if err != nil {
		t.Fatalf("build list query: %v", err)
	}
	want := "SELECT id, name FROM products WHERE category = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?"
	if query != want {
		t.Fatalf("unexpected query %q", query)
	}
	if !reflect.DeepEqual(args, []any{"Cricket", 10, 20}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildUpdateQueryRequiresSets(t *testing.T) {
	if _, _, err := buildUpdateQuery("users", nil, []predicate{{"id", "x"}}); err == nil {
		t.Fatal("expected error for empty set clause")
	}

	query, args, err := buildUpdateQuery("users",
		[]predicate{{"status", "Blocked"}, {"updatedAt", "now"}},
		[]predicate{{"id", "u1"}},
	)
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}
	if query != "UPDATE users SET status = ?, updatedAt = ? WHERE id = ?" {
		t.Fatalf("unexpected query %q", query)
	}
	if !reflect.DeepEqual(args, []any{"Blocked", "now", "u1"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestInClause(t *testing.T) {
	clause, args := inClause("id", []string{"a", "b", "c"})
	if clause != "id IN (?, ?, ?)" {
		t.Fatalf("unexpected clause %q", clause)
	}
	if !reflect.DeepEqual(args, []any{"a", "b", "c"}) {
		t.Fatalf("unexpected args %v", args)
	}
}
