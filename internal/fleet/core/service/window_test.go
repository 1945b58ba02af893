package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowFromDate(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		window Window
		want   time.Time
	}{
		{WindowMonthToDate, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{WindowYearToDate, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Window("30"), now.AddDate(0, 0, -30)},
		{Window("60"), now.AddDate(0, 0, -60)},
		{Window("90"), now.AddDate(0, 0, -90)},

		// Anything unrecognized falls back to the default 30 days.
		{Window(""), now.AddDate(0, 0, -30)},
		{Window("quarter"), now.AddDate(0, 0, -30)},
		{Window("-5"), now.AddDate(0, 0, -30)},
		{Window("0"), now.AddDate(0, 0, -30)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.window.FromDate(now), "window=%q", tt.window)
	}
}

func TestWindowFromDateKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, loc)

	assert.Equal(t, loc, WindowMonthToDate.FromDate(now).Location())
	assert.Equal(t, loc, WindowYearToDate.FromDate(now).Location())
}
