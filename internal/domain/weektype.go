package domain

import "time"

// WeekType labels alternating academic weeks.
type WeekType string

const (
	WeekOdd  WeekType = "odd"
	WeekEven WeekType = "even"
)

// Label returns a human-readable week label for schedule headers.
func (w WeekType) Label() string {
	if w == WeekEven {
		return "even week"
	}
	return "odd week"
}

// WeekCalculator maps calendar dates to odd/even academic weeks relative to
// a semester start anchor. The anchor comes from configuration; the week
// containing it is odd.
type WeekCalculator struct {
	anchorMonday time.Time
	loc          *time.Location
}

// NewWeekCalculator creates a calculator anchored at semesterStart.
// Times are evaluated in loc.
func NewWeekCalculator(semesterStart time.Time, loc *time.Location) *WeekCalculator {
	return &WeekCalculator{
		anchorMonday: MondayOf(semesterStart.In(loc)),
		loc:          loc,
	}
}

// ForDate returns the week type of the week containing t.
// Dates before the anchor are handled via floored week division, so parity
// stays periodic across the anchor.
func (c *WeekCalculator) ForDate(t time.Time) WeekType {
	monday := MondayOf(t.In(c.loc))
	days := daysSinceEpoch(monday) - daysSinceEpoch(c.anchorMonday)
	weeks := floorDiv(days, 7)
	if ((weeks%2)+2)%2 == 0 {
		return WeekOdd
	}
	return WeekEven
}

// Current returns the week type for the current moment.
func (c *WeekCalculator) Current() WeekType {
	return c.ForDate(time.Now().In(c.loc))
}

// MondayOf returns midnight of the Monday of t's week, in t's location.
// Sunday belongs to the week started by the preceding Monday.
func MondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(wd - 1))
}

// StartOfDay returns midnight of t's calendar day, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysSinceEpoch counts calendar days ignoring the clock, which keeps week
// arithmetic stable across DST transitions.
func daysSinceEpoch(t time.Time) int {
	return int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
