package domain

import (
	"strings"
	"time"
)

// Date layouts seen on scanned maritime paperwork. Order matters: the first
// layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseCivilDate parses a date string in any supported layout into a civil
// (calendar) date. The boolean reports whether parsing succeeded.
func ParseCivilDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DatesEqual compares two date strings as calendar dates, not as strings:
// "2024-05-01" and "01.05.2024" are equal. When either side does not parse,
// it falls back to normalized text equality. Present-vs-absent is never
// equal.
func DatesEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return a == "" && b == ""
	}
	da, okA := ParseCivilDate(a)
	db, okB := ParseCivilDate(b)
	if okA && okB {
		return da.Equal(db)
	}
	return NormalizeKey(a) == NormalizeKey(b)
}

// TextEqual compares two text fields case-insensitively with inner
// whitespace collapsed. Present-vs-absent is never equal.
func TextEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return a == "" && b == ""
	}
	return NormalizeKey(a) == NormalizeKey(b)
}
