package grid

import (
	"math"
	"time"
)

// NormalizeHour folds an hour value into the broadcast day: hours at or past
// 24 wrap around (24 becomes 0). Values below 24 pass through untouched.
func NormalizeHour(h float64) float64 {
	if h < 24 {
		return h
	}
	return h - 24
}

// FormatHour renders a fractional hour as a 12-hour wall clock label,
// e.g. 18.5 -> "06:30 PM". The value is rounded to the nearest minute so
// binary float noise cannot shift the label.
func FormatHour(h float64) string {
	minutes := time.Duration(math.Round(h*60)) * time.Minute
	t := time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Add(minutes)
	return t.Format("03:04 PM")
}
