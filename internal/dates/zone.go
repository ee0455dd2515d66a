// Package dates holds the wall-clock arithmetic used by the parser and the
// recurrence engine. Every function takes the zone explicitly; instants are
// projected into it, adjusted on the calendar, and projected back.
package dates

import (
	"strings"
	"time"
)

// LoadZone resolves an IANA zone name. Unknown or empty names fall back to
// UTC and report false.
func LoadZone(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// InZone returns t as wall-clock time in loc. A nil loc means UTC.
func InZone(t time.Time, loc *time.Location) time.Time {
	return t.In(orUTC(loc))
}

// FromWallClock builds the instant for a wall-clock reading in loc.
func FromWallClock(year int, month time.Month, day, hour, min, sec, nsec int, loc *time.Location) time.Time {
	return time.Date(year, month, day, hour, min, sec, nsec, orUTC(loc))
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := InZone(t, loc)
	return FromWallClock(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59.999 local, the instant used for inclusive end dates.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	l := InZone(t, loc)
	return FromWallClock(l.Year(), l.Month(), l.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}

// SetClock keeps the local date of t and replaces the time of day.
func SetClock(t time.Time, hour, min int, loc *time.Location) time.Time {
	l := InZone(t, loc)
	return FromWallClock(l.Year(), l.Month(), l.Day(), hour, min, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same local date.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := InZone(a, loc).Date()
	by, bm, bd := InZone(b, loc).Date()
	return ay == by && am == bm && ad == bd
}

func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	l := InZone(t, loc)
	return FromWallClock(l.Year(), l.Month(), l.Day()+n, l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), loc)
}

func AddWeeks(t time.Time, n int, loc *time.Location) time.Time {
	return AddDays(t, 7*n, loc)
}

// AddMonths moves n calendar months, clamping the day to the end of the
// target month: Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int, loc *time.Location) time.Time {
	l := InZone(t, loc)
	first := FromWallClock(l.Year(), l.Month()+time.Month(n), 1, 0, 0, 0, 0, loc)
	y, m, _ := first.Date()
	d := l.Day()
	if last := DaysIn(y, m); d > last {
		d = last
	}
	return FromWallClock(y, m, d, l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), loc)
}

// AddYears moves n years with the same clamping, so Feb 29 lands on Feb 28.
func AddYears(t time.Time, n int, loc *time.Location) time.Time {
	return AddMonths(t, 12*n, loc)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextWeekday returns local midnight of the next wd strictly after the local
// date of ref.
func NextWeekday(ref time.Time, wd time.Weekday, loc *time.Location) time.Time {
	today := StartOfDay(ref, loc)
	diff := (int(wd) - int(InZone(today, loc).Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return AddDays(today, diff, loc)
}

func TomorrowAt(ref time.Time, hour, min int, loc *time.Location) time.Time {
	return SetClock(AddDays(StartOfDay(ref, loc), 1, loc), hour, min, loc)
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts English weekday names, short forms and plurals.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if wd, ok := weekdays[name]; ok {
		return wd, true
	}
	wd, ok := weekdays[strings.TrimSuffix(name, "s")]
	return wd, ok
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

func ParseMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))]
	return m, ok
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
