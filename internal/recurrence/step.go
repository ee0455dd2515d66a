// Package recurrence generates the occurrences of a recurring task and
// computes the next due date when one is completed.
//
// Every function here is pure. Stepping happens on the wall clock in the
// caller's zone, and each occurrence is computed from the anchor so month-end
// clamping never accumulates.
package recurrence

import (
	"math"
	"time"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
)

// Step returns t moved forward by k intervals of rule. The second result is
// false when the pattern has no stepping (none and custom).
func Step(t time.Time, rule model.RecurrenceRule, k int, loc *time.Location) (time.Time, bool) {
	rule = rule.Normalize()
	n := k * rule.Interval
	switch rule.Pattern {
	case model.PatternDaily:
		return dates.AddDays(t, n, loc), true
	case model.PatternWeekly:
		return dates.AddWeeks(t, n, loc), true
	case model.PatternMonthly:
		return dates.AddMonths(t, n, loc), true
	case model.PatternYearly:
		return dates.AddYears(t, n, loc), true
	}
	return t, false
}

// longestStep is an upper bound on one unit of each pattern, leaving room
// for a DST shift.
var longestStep = map[model.Pattern]time.Duration{
	model.PatternDaily:   25 * time.Hour,
	model.PatternWeekly:  7*24*time.Hour + time.Hour,
	model.PatternMonthly: 31*24*time.Hour + time.Hour,
	model.PatternYearly:  366*24*time.Hour + time.Hour,
}

// firstOnOrAfter returns the smallest k >= 0 whose step from anchor is not
// before target. The jump uses the longest step so it never overshoots.
func firstOnOrAfter(anchor time.Time, rule model.RecurrenceRule, target time.Time, loc *time.Location) int {
	rule = rule.Normalize()
	if !target.After(anchor) {
		return 0
	}
	k := 0
	if unit, ok := longestStep[rule.Pattern]; ok && int64(rule.Interval) <= math.MaxInt64/int64(unit) {
		k = int(target.Sub(anchor) / (unit * time.Duration(rule.Interval)))
	}
	for {
		t, ok := Step(anchor, rule, k, loc)
		if !ok || !t.Before(target) {
			return k
		}
		k++
	}
}
