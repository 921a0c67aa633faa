package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vinitgirdhar/KhelWapas/internal/services/market/storage"
)

// timeLayout is ISO-8601 with millisecond precision, matching what the
// application has historically written. Fixed width keeps lexicographic
// ordering of timestamp columns consistent with chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

// boolToInt coerces an application boolean to the store's 0/1 integer
// representation. SQLite has no native boolean type.
func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func encodeJSON(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(raw), nil
}

func decodeStringList(value string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("decode string list column: %w", err)
	}
	return out, nil
}

func decodeSpecs(value string) (map[string]string, error) {
	var out map[string]string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("decode specs column: %w", err)
	}
	return out, nil
}

func decodeOrderItems(value string) ([]storage.OrderItem, error) {
	var out []storage.OrderItem
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("decode order items column: %w", err)
	}
	return out, nil
}

// normalizeAmount validates a monetary amount as exact decimal text.
// Amounts are stored and returned as strings; parsing them into binary
// floats anywhere in this layer would lose precision.
func normalizeAmount(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("amount is required")
	}
	digits := 0
	dot := false
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			if dot || i == 0 || i == len(trimmed)-1 {
				return "", fmt.Errorf("malformed amount %q", value)
			}
			dot = true
		default:
			return "", fmt.Errorf("malformed amount %q", value)
		}
	}
	if digits == 0 {
		return "", fmt.Errorf("malformed amount %q", value)
	}
	return trimmed, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func fromNull(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

func fromNullInt(value sql.NullInt64) int {
	if !value.Valid {
		return 0
	}
	return int(value.Int64)
}
