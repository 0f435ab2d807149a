package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Accepted year window. Dates outside it almost always mean day and year were transposed.
const (
	MinYear = 2020
	MaxYear = 2030
)

// ParseDate parses a day-first date (DD/MM/YYYY, DD-MM-YY, ...) into a UTC
// calendar day. Any time-of-day suffix separated by whitespace is ignored.
func ParseDate(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	parts := strings.FieldsFunc(fields[0], func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 || strings.Count(fields[0], "/")+strings.Count(fields[0], "-") != 2 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	if len(parts[2]) <= 2 {
		year += 2000
	}

	if day < 1 || day > 31 || month < 1 || month > 12 || year < MinYear || year > MaxYear {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/02 into March; such input is rejected instead.
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
