package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe = regexp.MustCompile(`^(\d{1,2})[:.h]?(\d{2})$`)
	// Separators seen in block labels: "-", en dash, em dash, "a", "to".
	rangeSepRe = regexp.MustCompile(`\s*(?:-|–|—|\ba\b|\bto\b)\s*`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Clock parses a wall-clock time such as "07:00", "7:00", "0700" or "7h00"
// and returns minutes since midnight.
func Clock(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unable to parse clock time: %q", raw)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, fmt.Errorf("clock time out of range: %q", raw)
	}
	return h*60 + min, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TimeRange parses a label such as "07:00-08:45" or "07:00 a 08:45" into
// start and end minutes since midnight. The end must be after the start.
func TimeRange(raw string) (start, end int, err error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	parts := rangeSepRe.Split(s, -1)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unable to parse time range: %q", raw)
	}
	if start, err = Clock(parts[0]); err != nil {
		return 0, 0, err
	}
	if end, err = Clock(parts[1]); err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("time range ends before it starts: %q", raw)
	}
	return start, end, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// Date parses a calendar date. Full timestamps are accepted and truncated to
// their date in their own offset, so "2025-01-15T00:00:00.000Z" is 2025-01-15.
// The result is midnight UTC.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}
