package sqlite

import (
	"testing"
	"time"
)

func TestTimeRoundTrip(t *testing.T) {
	original := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	encoded := formatTime(original)
	if encoded != "2025-03-14T09:26:53.589Z" {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	decoded, err := parseTime(encoded)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	if !decoded.Equal(original) {
		t.Fatalf("expected %v, got %v", original, decoded)
	}
}

func TestFormatTimeKeepsLexicographicOrder(t *testing.T) {
	earlier := formatTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	later := formatTime(time.Date(2025, 1, 2, 3, 4, 5, 10_000_000, time.UTC))
	if !(earlier < later) {
		t.Fatalf("expected %q < %q", earlier, later)
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	if _, err := parseTime("yesterday"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestNormalizeAmount(t *testing.T) {
	valid := map[string]string{
		"18500":   "18500",
		"2500.50": "2500.50",
		" 99 ":    "99",
		"0.01":    "0.01",
		"000123":  "000123",
	}
	for input, want := range valid {
		got, err := normalizeAmount(input)
		if err != nil {
			t.Errorf("normalizeAmount(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("normalizeAmount(%q) = %q, want %q", input, got, want)
		}
	}

	invalid := []string{"", "  ", ".", ".5", "5.", "1.2.3", "12a", "-5", "1,200", "₹500"}
	for _, input := range invalid {
		if _, err := normalizeAmount(input); err == nil {
			t.Errorf("normalizeAmount(%q): expected error", input)
		}
	}
}

func TestBoolToInt(t *testing.T) {
	if boolToInt(true) != 1 || boolToInt(false) != 0 {
		t.Fatal("expected true=1 false=0")
	}
}

func TestDecodeStringList(t *testing.T) {
	list, err := decodeStringList(`["/a.jpg","/b.jpg"]`)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0] != "/a.jpg" {
		t.Fatalf("unexpected list %v", list)
	}
	if _, err := decodeStringList("not json"); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
