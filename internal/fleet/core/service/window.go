package service

import (
	"strconv"
	"time"
)

// Window selects the reporting period for an aggregation cycle. Supported
// values: a day count ("30", "60", "90"), "mtd" (month-to-date) and "ytd"
// (year-to-date).
type Window string

const (
	WindowMonthToDate Window = "mtd"
	WindowYearToDate  Window = "ytd"

	// DefaultWindow is the 30-day period used when nothing is selected.
	DefaultWindow Window = "30"
)

// FromDate resolves the window into its inclusive start time relative to now.
// Unrecognized values fall back to the default 30 days.
func (w Window) FromDate(now time.Time) time.Time {
	switch w {
	case WindowMonthToDate:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case WindowYearToDate:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}

	days, err := strconv.Atoi(string(w))
	if err != nil || days <= 0 {
		days = 30
	}
	return now.AddDate(0, 0, -days)
}
