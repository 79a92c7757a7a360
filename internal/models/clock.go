package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock converts an "HH:MM" wall-clock string to minutes since
// midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// DecimalHours converts minutes since midnight to decimal hours
// (hh + mm/60), the unit the pricing rules are written in.
func DecimalHours(min int) float64 {
	return float64(min) / 60.0
}

// Overlaps reports whether two half-open minute intervals intersect.
// Back-to-back intervals (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// SlotStart combines a calendar day with a start offset into the moment
// the slot begins, in the local time zone. Dates are time-zone-naive, so
// the cancellation window is measured against local wall-clock time.
func SlotStart(date time.Time, startMin int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, time.Local)
}
