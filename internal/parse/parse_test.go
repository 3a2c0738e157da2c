package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRange(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		start     int
		end       int
		expectErr bool
	}{
		{name: "Standard Label", raw: "07:00-08:45", start: 420, end: 525},
		{name: "Spaces Around Dash", raw: "15:45 - 17:30", start: 945, end: 1050},
		{name: "En Dash", raw: "10:30–12:15", start: 630, end: 735},
		{name: "Spanish Separator", raw: "12:15 a 14:00", start: 735, end: 840},
		{name: "Single Digit Hour", raw: "7:00-8:45", start: 420, end: 525},
		{name: "Compact Clock", raw: "0700-0845", start: 420, end: 525},
		{name: "Reversed Range", raw: "08:45-07:00", expectErr: true},
		{name: "Missing End", raw: "07:00", expectErr: true},
		{name: "Garbage", raw: "morning", expectErr: true},
		{name: "Hour Out Of Range", raw: "25:00-26:00", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := TimeRange(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "07:00", FormatClock(420))
	assert.Equal(t, "17:30", FormatClock(1050))
}

func TestDate(t *testing.T) {
	want := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2025-01-15",
		"2025-01-15T00:00:00Z",
		"2025-01-15T00:00:00.000Z",
		"2025-01-15T18:30:00-05:00",
		"15/01/2025",
		" 2025-01-15 ",
	} {
		got, err := Date(raw)
		assert.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%q parsed as %v", raw, got)
	}

	_, err := Date("15 de enero")
	assert.Error(t, err)
}

func TestHexTag(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  string
		expectErr bool
	}{
		{raw: "e2003412b802", expected: "E2003412B802"},
		{raw: "E2:00:34:12", expected: "E2003412"},
		{raw: "0xDEADBEEF", expected: "DEADBEEF"},
		{raw: "E2 00 34 12 B8 02", expected: "E2003412B802"},
		{raw: "1234", expectErr: true},
		{raw: "XYZ12345", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		got, err := HexTag(tc.raw)
		if tc.expectErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		assert.NoError(t, err, tc.raw)
		assert.Equal(t, tc.expected, got)
	}
}
