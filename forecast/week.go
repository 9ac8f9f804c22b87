package forecast

import "time"

// Week is a 7-day planning window anchored to a configured first weekday,
// normalized to midnight so date comparisons are stable.
type Week struct {
	Start    time.Time
	StartDay time.Weekday
}

// NewWeek returns the week containing anchor, starting on startDay.
func NewWeek(anchor time.Time, startDay time.Weekday) Week {
	day := midnight(anchor)
	back := (int(day.Weekday()) - int(startDay) + 7) % 7
	return Week{Start: day.AddDate(0, 0, -back), StartDay: startDay}
}

// Next returns the week immediately after w.
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, 7), StartDay: w.StartDay}
}

// Day maps a day index 0..6 to its calendar date.
func (w Week) Day(index int) time.Time {
	return w.Start.AddDate(0, 0, index)
}

// End returns the last day of the week (index 6).
func (w Week) End() time.Time {
	return w.Day(6)
}

// Contains reports whether t falls on one of the week's 7 days.
func (w Week) Contains(t time.Time) bool {
	_, ok := w.DayIndex(t)
	return ok
}

// DayIndex returns the 0..6 index of t within the week, if any.
// Dates are compared by calendar day so DST transitions don't shift indices.
func (w Week) DayIndex(t time.Time) (int, bool) {
	for i := 0; i < 7; i++ {
		if SameDay(t, w.Day(i)) {
			return i, true
		}
	}
	return 0, false
}

// WeekdayIndex maps a calendar date's weekday to the week's 0..6 indexing,
// regardless of which week the date falls in.
func (w Week) WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) - int(w.StartDay) + 7) % 7
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseWeekday resolves an English weekday name, defaulting to Monday.
func ParseWeekday(name string) time.Weekday {
	switch name {
	case "Sunday", "sunday":
		return time.Sunday
	case "Monday", "monday", "":
		return time.Monday
	case "Tuesday", "tuesday":
		return time.Tuesday
	case "Wednesday", "wednesday":
		return time.Wednesday
	case "Thursday", "thursday":
		return time.Thursday
	case "Friday", "friday":
		return time.Friday
	case "Saturday", "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}
