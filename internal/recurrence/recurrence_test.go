package recurrence

import (
	"testing"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/gongahkia/dueday/internal/model"
)

type recordingLogger struct{ warnings []string }

func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Warn(msg string, _ ...any) { r.warnings = append(r.warnings, msg) }

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func recurring(due time.Time, p model.Pattern, interval int, ends *time.Time) model.Task {
	t := model.Task{
		ID:      1,
		Text:    "Water plants",
		DueDate: &due,
		Rule:    model.RecurrenceRule{Pattern: p, Interval: interval, EndsAt: ends},
	}
	t.Normalize()
	return t
}

func dueDates(occ []model.Occurrence) []string {
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = o.DueDate.Format("2006-01-02 15:04")
	}
	return out
}

func TestStep(t *testing.T) {
	jan31 := day(2025, 1, 31, 9)
	tests := []struct {
		rule model.RecurrenceRule
		k    int
		want string
		ok   bool
	}{
		{model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 3}, 2, "2025-02-06", true},
		{model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 1}, 1, "2025-02-07", true},
		{model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1}, 1, "2025-02-28", true},
		{model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1}, 2, "2025-03-31", true},
		{model.RecurrenceRule{Pattern: model.PatternYearly, Interval: 0}, 1, "2026-01-31", true},
		{model.RecurrenceRule{Pattern: model.PatternCustom}, 1, "2025-01-31", false},
		{model.RecurrenceRule{Pattern: model.PatternNone}, 1, "2025-01-31", false},
	}
	for _, tt := range tests {
		t.Run(tt.rule.String(), func(t *testing.T) {
			got, ok := Step(jan31, tt.rule, tt.k, time.UTC)
			if ok != tt.ok || got.Format("2006-01-02") != tt.want {
				t.Errorf("Step(k=%d) = %s, %v; want %s, %v", tt.k, got.Format("2006-01-02"), ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExpandNonRecurring(t *testing.T) {
	due := day(2025, 1, 1, 9)
	task := model.Task{Text: "Once", DueDate: &due}
	task.Normalize()

	// returned as-is even though it is outside the window
	occ := Expand(task, day(2025, 6, 1, 0), day(2025, 6, 30, 0), time.UTC)
	if len(occ) != 1 || !occ[0].DueDate.Equal(due) {
		t.Fatalf("expected the task itself, got %+v", occ)
	}

	noDue := model.Task{Text: "Someday", Rule: model.RecurrenceRule{Pattern: model.PatternDaily}}
	noDue.Normalize()
	if occ := Expand(noDue, day(2025, 6, 1, 0), day(2025, 6, 30, 0), time.UTC); len(occ) != 1 {
		t.Errorf("expected one occurrence for a task without due date, got %d", len(occ))
	}

	daily := recurring(due, model.PatternDaily, 1, nil)
	if occ := Expand(daily, day(2025, 1, 1, 0), day(2025, 1, 5, 0), nil); len(occ) != 1 {
		t.Errorf("expected nil zone to return the task itself, got %d", len(occ))
	}
}

func TestExpandFlaggedNone(t *testing.T) {
	due := day(2025, 6, 10, 9)
	task := model.Task{Text: "Flagged", DueDate: &due, IsRecurring: true}
	task.Normalize()

	if occ := Expand(task, day(2025, 6, 1, 0), day(2025, 6, 30, 0), time.UTC); len(occ) != 1 {
		t.Errorf("expected in-range task, got %d", len(occ))
	}
	if occ := Expand(task, day(2025, 7, 1, 0), day(2025, 7, 30, 0), time.UTC); len(occ) != 0 {
		t.Errorf("expected no occurrence out of range, got %d", len(occ))
	}
}

func TestExpandWeeklyEndsAt(t *testing.T) {
	due := day(2025, 6, 2, 9)
	ends := due.AddDate(0, 0, 21)
	task := recurring(due, model.PatternWeekly, 1, &ends)

	occ := Expand(task, due, due.AddDate(0, 0, 42), time.UTC)
	if len(occ) != 4 {
		t.Fatalf("expected anchor plus three, got %v", dueDates(occ))
	}
	for i, o := range occ {
		if o.DueDate.After(ends) {
			t.Errorf("occurrence %d past ends: %s", i, o.DueDate)
		}
		if o.Index != i || o.Task.DueDate == nil || !o.Task.DueDate.Equal(o.DueDate) {
			t.Errorf("occurrence %d not stamped: %+v", i, o)
		}
	}
}

func TestExpandAnchorPastEndsAt(t *testing.T) {
	due := day(2025, 6, 10, 9)
	ends := day(2025, 6, 1, 0)
	task := recurring(due, model.PatternDaily, 1, &ends)
	if occ := Expand(task, day(2025, 6, 1, 0), day(2025, 6, 30, 0), time.UTC); len(occ) != 0 {
		t.Errorf("expected nothing, got %v", dueDates(occ))
	}
}

func TestExpandFastForward(t *testing.T) {
	due := day(2020, 1, 31, 9)
	task := recurring(due, model.PatternMonthly, 1, nil)
	occ := Expand(task, day(2025, 2, 1, 0), day(2025, 4, 30, 23), time.UTC)
	want := []string{"2025-02-28 09:00", "2025-03-31 09:00", "2025-04-30 09:00"}
	got := dueDates(occ)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got[i], want[i])
		}
	}
	if occ[0].Index != 61 {
		t.Errorf("expected index counted from the anchor, got %d", occ[0].Index)
	}
}

func TestExpandBounds(t *testing.T) {
	due := day(2025, 3, 1, 8)
	from, to := day(2025, 3, 5, 0), day(2025, 5, 20, 0)
	ends := day(2025, 5, 1, 0)
	for _, p := range []model.Pattern{model.PatternDaily, model.PatternWeekly, model.PatternMonthly, model.PatternYearly} {
		for n := 1; n <= 4; n++ {
			task := recurring(due, p, n, &ends)
			for _, o := range Expand(task, from, to, time.UTC) {
				if o.DueDate.Before(from) || o.DueDate.After(to) || o.DueDate.After(ends) {
					t.Errorf("%s/%d emitted %s outside bounds", p, n, o.DueDate)
				}
			}
		}
	}
}

func TestExpandIdempotent(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	due := time.Date(2025, 3, 1, 8, 0, 0, 0, loc)
	task := recurring(due, model.PatternDaily, 2, nil)
	from, to := due, due.AddDate(0, 2, 0)

	a := dueDates(Expand(task, from, to, loc))
	b := dueDates(Expand(task, from, to, loc))
	if len(a) != len(b) || len(a) == 0 {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("occurrence %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestExpandKeepsWallClockAcrossDST(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	due := time.Date(2025, 3, 7, 8, 0, 0, 0, loc)
	task := recurring(due, model.PatternDaily, 1, nil)
	for _, o := range Expand(task, due, due.AddDate(0, 0, 5), loc) {
		if h := o.DueDate.In(loc).Hour(); h != 8 {
			t.Errorf("%s drifted to %d:00", o.DueDate, h)
		}
	}
}

func TestExpandCustomAnchorOnly(t *testing.T) {
	due := day(2025, 6, 10, 9)
	task := recurring(due, model.PatternCustom, 1, nil)
	occ := Expand(task, day(2025, 6, 1, 0), day(2026, 6, 1, 0), time.UTC)
	if len(occ) != 1 || !occ[0].DueDate.Equal(due) {
		t.Errorf("expected only the anchor, got %v", dueDates(occ))
	}
}

func TestExpandHugeInterval(t *testing.T) {
	due := day(2025, 6, 11, 9)
	for _, p := range []model.Pattern{model.PatternDaily, model.PatternWeekly, model.PatternMonthly, model.PatternYearly} {
		for _, n := range []int{1 << 51, 1 << 62, 1<<63 - 1} {
			task := model.Task{Text: "Stretch", DueDate: &due, Rule: model.RecurrenceRule{Pattern: p, Interval: n}}
			if occ := Expand(task, due.AddDate(0, 0, 5), due.AddDate(0, 1, 0), time.UTC); len(occ) != 0 {
				t.Errorf("%s/%d: expected nothing in range, got %v", p, n, dueDates(occ))
			}
		}
	}
	task := recurring(due, model.PatternDaily, 1<<51, nil)
	if task.Rule.Interval != model.MaxInterval {
		t.Errorf("expected interval clamped to %d, got %d", model.MaxInterval, task.Rule.Interval)
	}
}

func TestExpandInvertedRange(t *testing.T) {
	task := recurring(day(2025, 6, 10, 9), model.PatternDaily, 1, nil)
	if occ := Expand(task, day(2025, 7, 1, 0), day(2025, 6, 1, 0), time.UTC); occ != nil {
		t.Errorf("expected nil, got %v", dueDates(occ))
	}
}

func TestExpandHardCap(t *testing.T) {
	task := recurring(day(2025, 1, 1, 9), model.PatternDaily, 1, nil)
	logger := &recordingLogger{}
	e := Expander{MaxOccurrences: 10, Logger: logger}
	occ := e.Expand(task, day(2025, 1, 1, 0), day(2025, 12, 31, 0), time.UTC)
	if len(occ) != 10 {
		t.Errorf("expected 10 occurrences, got %d", len(occ))
	}
	if len(logger.warnings) != 1 {
		t.Errorf("expected a truncation warning, got %v", logger.warnings)
	}
}

func TestExpandMatchesRRule(t *testing.T) {
	anchor := day(2025, 1, 10, 9)
	from, to := day(2025, 2, 1, 0), day(2026, 12, 31, 0)
	for _, p := range []model.Pattern{model.PatternDaily, model.PatternWeekly, model.PatternMonthly, model.PatternYearly} {
		for _, n := range []int{1, 3} {
			rule := model.RecurrenceRule{Pattern: p, Interval: n}
			t.Run(rule.String(), func(t *testing.T) {
				opt := RRule(rule)
				opt.Dtstart = anchor
				r, err := rrule.NewRRule(*opt)
				if err != nil {
					t.Fatal(err)
				}
				want := r.Between(from, to, true)
				got := Expand(recurring(anchor, p, n, nil), from, to, time.UTC)
				if len(got) != len(want) {
					t.Fatalf("got %d occurrences, rrule has %d", len(got), len(want))
				}
				for i := range want {
					if !got[i].DueDate.Equal(want[i]) {
						t.Errorf("occurrence %d = %s, rrule %s", i, got[i].DueDate, want[i])
					}
				}
			})
		}
	}
}

func TestAdvance(t *testing.T) {
	ends := day(2025, 6, 12, 23)
	tests := []struct {
		name      string
		due       time.Time
		pattern   model.Pattern
		interval  int
		ends      *time.Time
		completed time.Time
		want      string // empty means nil
	}{
		{"on time", day(2025, 6, 11, 8), model.PatternDaily, 1, nil, day(2025, 6, 11, 9), "2025-06-12 08:00"},
		{"late daily catches up", day(2025, 6, 10, 8), model.PatternDaily, 1, nil, day(2025, 6, 11, 10), "2025-06-11 08:00"},
		{"week late", day(2025, 6, 1, 8), model.PatternDaily, 1, nil, day(2025, 6, 11, 10), "2025-06-11 08:00"},
		{"weekly", day(2025, 6, 4, 8), model.PatternWeekly, 2, nil, day(2025, 6, 4, 9), "2025-06-18 08:00"},
		{"monthly clamps", day(2025, 1, 31, 8), model.PatternMonthly, 1, nil, day(2025, 1, 31, 9), "2025-02-28 08:00"},
		{"yearly", day(2024, 2, 29, 8), model.PatternYearly, 1, nil, day(2024, 2, 29, 9), "2025-02-28 08:00"},
		{"within ends", day(2025, 6, 11, 8), model.PatternDaily, 1, &ends, day(2025, 6, 11, 9), "2025-06-12 08:00"},
		{"past ends", day(2025, 6, 12, 8), model.PatternDaily, 1, &ends, day(2025, 6, 12, 9), ""},
		{"catch up stops at ends", day(2025, 6, 1, 8), model.PatternDaily, 1, &ends, day(2025, 6, 20, 9), ""},
		{"custom", day(2025, 6, 11, 8), model.PatternCustom, 1, nil, day(2025, 6, 11, 9), ""},
		{"none", day(2025, 6, 11, 8), model.PatternNone, 1, nil, day(2025, 6, 11, 9), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(recurring(tt.due, tt.pattern, tt.interval, tt.ends), tt.completed, time.UTC)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("expected nil, got %s", got)
			case tt.want != "" && got == nil:
				t.Errorf("expected %s, got nil", tt.want)
			case got != nil && got.Format("2006-01-02 15:04") != tt.want:
				t.Errorf("got %s, want %s", got.Format("2006-01-02 15:04"), tt.want)
			}
		})
	}
}

func TestAdvanceHugeInterval(t *testing.T) {
	due := day(2025, 6, 11, 9)
	// built without Normalize so the raw interval reaches Advance
	task := model.Task{Text: "Stretch", DueDate: &due, Rule: model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1 << 51}}
	got := Advance(task, due.AddDate(0, 0, 10), time.UTC)
	if want := due.AddDate(0, 0, model.MaxInterval); got == nil || !got.Equal(want) {
		t.Errorf("got %v, want %s", got, want)
	}
}

func TestAdvanceWithoutDueDate(t *testing.T) {
	task := model.Task{Text: "Floss", Rule: model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1}}
	task.Normalize()
	completed := day(2025, 6, 11, 21)
	got := Advance(task, completed, time.UTC)
	if got == nil || !got.Equal(completed.AddDate(0, 0, 1)) {
		t.Errorf("expected a day after completion, got %v", got)
	}
}

func TestAdvanceMonotonic(t *testing.T) {
	loc, _ := time.LoadLocation("Australia/Sydney")
	due := time.Date(2025, 1, 31, 7, 30, 0, 0, loc)
	task := recurring(due, model.PatternMonthly, 1, nil)
	prev := due
	for i := 0; i < 24; i++ {
		next := Advance(task, prev, loc)
		if next == nil || !next.After(prev) {
			t.Fatalf("step %d: %v is not after %s", i, next, prev)
		}
		task.DueDate = next
		prev = *next
	}
}

func TestRRuleRoundTrip(t *testing.T) {
	ends := day(2025, 12, 31, 23)
	rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 2, EndsAt: &ends}
	opt := RRule(rule)
	if opt == nil {
		t.Fatal("expected an RRULE")
	}
	parsed, err := rrule.StrToROption(opt.RRuleString())
	if err != nil {
		t.Fatal(err)
	}
	back, ok := FromRRule(parsed)
	if !ok || back.Pattern != rule.Pattern || back.Interval != 2 || back.EndsAt == nil || !back.EndsAt.Equal(ends) {
		t.Errorf("round trip gave %+v", back)
	}

	if RRule(model.RecurrenceRule{Pattern: model.PatternCustom}) != nil {
		t.Error("custom has no RRULE")
	}
}

func TestFromRRuleUnsupported(t *testing.T) {
	for _, s := range []string{"FREQ=HOURLY", "FREQ=MONTHLY;BYDAY=1MO", "FREQ=DAILY;COUNT=5"} {
		opt, err := rrule.StrToROption(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if rule, ok := FromRRule(opt); ok || rule.Pattern != model.PatternCustom {
			t.Errorf("%s: expected custom, got %+v", s, rule)
		}
	}
}
