package recurrence

import (
	"time"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
)

// Advance returns the due date of the task that replaces task once it is
// completed at completedAt, or nil when the series is over.
//
// Occurrences that are already in the past are skipped: a daily task
// finished a week late yields one new task dated today, not seven. The skip
// stops early if it would pass EndsAt, and a result past EndsAt is nil.
func Advance(task model.Task, completedAt time.Time, loc *time.Location) *time.Time {
	rule := task.Rule.Normalize()
	if !rule.Pattern.Expandable() {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	base := completedAt
	if task.DueDate != nil {
		base = *task.DueDate
	}
	base = base.In(loc)
	today := dates.StartOfDay(completedAt, loc)
	pastEnd := func(t time.Time) bool {
		return rule.EndsAt != nil && t.After(*rule.EndsAt)
	}

	k := 1
	if first := firstOnOrAfter(base, rule, today, loc) - 1; first > k {
		// jump straight to the last missed occurrence
		k = first
	}
	next, _ := Step(base, rule, k, loc)
	for next.Before(today) && !pastEnd(next) {
		k++
		next, _ = Step(base, rule, k, loc)
	}
	if pastEnd(next) {
		return nil
	}
	return &next
}
