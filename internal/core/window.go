package core

import "time"

const (
	WindowDay   WindowKind = "day"
	WindowWeek  WindowKind = "week"
	WindowMonth WindowKind = "month"
	WindowYear  WindowKind = "year"
)

// WindowKind selects the reporting time window. Unknown values fall back to
// WindowMonth rather than failing.
type WindowKind string

// Canonical returns the kind itself when known, WindowMonth otherwise.
func (k WindowKind) Canonical() WindowKind {
	switch k {
	case WindowDay, WindowWeek, WindowMonth, WindowYear:
		return k
	default:
		return WindowMonth
	}
}

// WindowRange computes the half-open-at-nothing inclusive range [start, now]
// for a window kind. The week window is rolling (now minus 7 days), not a
// calendar week; day, month and year are calendar-anchored.
func WindowRange(kind WindowKind, now time.Time) (start, end time.Time) {
	switch kind.Canonical() {
	case WindowDay:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case WindowWeek:
		start = now.Add(-7 * 24 * time.Hour)
	case WindowYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return start, now
}

// DaysInWindow returns the fixed day-count approximation used for average
// daily expense: 1, 7, 30 or 365. Not the actual calendar day count.
func DaysInWindow(kind WindowKind) int {
	switch kind.Canonical() {
	case WindowDay:
		return 1
	case WindowWeek:
		return 7
	case WindowYear:
		return 365
	default:
		return 30
	}
}
