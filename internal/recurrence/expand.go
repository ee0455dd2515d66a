package recurrence

import (
	"time"

	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/model"
)

// DefaultMaxOccurrences caps a single expansion when Expander.MaxOccurrences
// is unset.
const DefaultMaxOccurrences = 5000

// shortestDay bounds how many daily steps fit in a window, DST included.
const shortestDay = 23 * time.Hour

type Expander struct {
	// MaxOccurrences is the hard cap per task. Zero means DefaultMaxOccurrences.
	MaxOccurrences int
	Logger         log.Logger
}

// Expand uses an Expander with default settings.
func Expand(task model.Task, rangeStart, rangeEnd time.Time, loc *time.Location) []model.Occurrence {
	return Expander{}.Expand(task, rangeStart, rangeEnd, loc)
}

// Expand lists the occurrences of task inside [rangeStart, rangeEnd].
//
// A task that is not recurring, has no due date, or is given a nil zone
// comes back as its single occurrence whether or not it is in range;
// filtering such tasks is up to the caller.
func (e Expander) Expand(task model.Task, rangeStart, rangeEnd time.Time, loc *time.Location) []model.Occurrence {
	rule := task.Rule.Normalize()
	if !(task.IsRecurring || rule.IsRecurring()) || task.DueDate == nil || loc == nil {
		var due time.Time
		if task.DueDate != nil {
			due = *task.DueDate
		}
		return []model.Occurrence{{Task: task, DueDate: due}}
	}
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	anchor := task.DueDate.In(loc)
	inRange := func(t time.Time) bool {
		return !t.Before(rangeStart) && !t.After(rangeEnd)
	}
	pastEnd := func(t time.Time) bool {
		return rule.EndsAt != nil && t.After(*rule.EndsAt)
	}

	if !rule.Pattern.Expandable() {
		if inRange(anchor) && (rule.Pattern == model.PatternNone || !pastEnd(anchor)) {
			return []model.Occurrence{occurrence(task, anchor, 0)}
		}
		return nil
	}

	limit := int(rangeEnd.Sub(rangeStart)/shortestDay) + 2
	hardCap := e.max()
	truncated := false
	if limit > hardCap {
		limit = hardCap
	}

	var out []model.Occurrence
	k := firstOnOrAfter(anchor, rule, rangeStart, loc)
	for {
		t, _ := Step(anchor, rule, k, loc)
		if t.After(rangeEnd) || pastEnd(t) {
			break
		}
		if len(out) == limit {
			truncated = limit == hardCap
			break
		}
		out = append(out, occurrence(task, t, k))
		k++
	}

	if truncated {
		e.logger().Warn("recurrence: expansion truncated",
			"task", task.ID,
			"rule", rule.String(),
			"cap", hardCap,
		)
	}
	return out
}

func (e Expander) max() int {
	if e.MaxOccurrences <= 0 {
		return DefaultMaxOccurrences
	}
	return e.MaxOccurrences
}

func (e Expander) logger() log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

func occurrence(task model.Task, due time.Time, index int) model.Occurrence {
	d := due
	task.DueDate = &d
	return model.Occurrence{Task: task, DueDate: due, Index: index}
}
