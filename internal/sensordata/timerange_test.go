package sensordata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRange(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period   string
		wantFrom string
	}{
		{"day", "2025-03-14T10:30:00Z"},
		{"week", "2025-03-08T10:30:00Z"},
		{"month", "2025-02-13T10:30:00Z"},
		{"year", "2024-03-15T10:30:00Z"},
		{"today", "2025-03-15T00:00:00Z"},
		// Unrecognized labels fall back to the one-day window.
		{"fortnight", "2025-03-14T10:30:00Z"},
		{"", "2025-03-14T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, to := TimeRange(tt.period, now)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, "2025-03-15T10:30:00Z", to)
		})
	}
}

func TestTimeRangeNormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 3, 15, 1, 0, 0, 0, ist)

	from, to := TimeRange("today", now)

	// 01:00 IST is 19:30 UTC the previous day, so the window belongs to
	// March 14 in UTC terms.
	assert.Equal(t, "2025-03-14T00:00:00Z", from)
	assert.Equal(t, "2025-03-14T19:30:00Z", to)
}
