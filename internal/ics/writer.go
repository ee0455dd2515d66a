package ics

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/recurrence"
)

const (
	productID = "-//gongahkia//dueday//EN"

	propColor      = "X-DUEDAY-COLOR"
	propCustomRule = "X-DUEDAY-CUSTOM-RULE"
	propPattern    = "X-DUEDAY-PATTERN"
)

type Writer struct {
	now func() time.Time
}

func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

func (w *Writer) WriteFile(ctx context.Context, tasks []model.Task, filePath string, loc *time.Location) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create ICS file: %w", err)
	}
	defer f.Close()

	if err := w.Write(ctx, tasks, f, loc); err != nil {
		return err
	}
	return f.Close()
}

// Write emits one VTODO per task. Due dates carry a TZID for loc unless loc
// is UTC.
func (w *Writer) Write(ctx context.Context, tasks []model.Task, out io.Writer, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	uids := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		uids[t.ID] = t.UID
	}

	cal := newCalendar()
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		cal.Children = append(cal.Children, w.writeTodo(t, uids, loc))
	}
	return ical.NewEncoder(out).Encode(cal)
}

// WriteOccurrences emits expanded occurrences as standalone VEVENTs, for
// calendar apps that should not see the RRULE.
func (w *Writer) WriteOccurrences(ctx context.Context, occ []model.Occurrence, out io.Writer, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cal := newCalendar()
	for _, o := range occ {
		if err := ctx.Err(); err != nil {
			return err
		}
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, o.Task.UID+"-"+strconv.Itoa(o.Index))
		event.Props.SetDateTime(ical.PropDateTimeStamp, w.now().UTC())
		event.Props.SetText(ical.PropSummary, o.Task.Text)
		if o.Task.Notes != "" {
			event.Props.SetText(ical.PropDescription, o.Task.Notes)
		}
		event.Props.SetDateTime(ical.PropDateTimeStart, o.DueDate.In(loc))
		if o.Derived() {
			event.Props.SetText(ical.PropRelatedTo, o.Task.UID)
		}
		cal.Children = append(cal.Children, event)
	}
	return ical.NewEncoder(out).Encode(cal)
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func (w *Writer) writeTodo(t model.Task, uids map[int64]string, loc *time.Location) *ical.Component {
	todo := ical.NewComponent(ical.CompToDo)

	todo.Props.SetText(ical.PropUID, t.UID)
	todo.Props.SetText(ical.PropSummary, t.Text)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, w.now().UTC())

	if t.Notes != "" {
		todo.Props.SetText(ical.PropDescription, t.Notes)
	}
	if t.Category != "" {
		todo.Props.SetText(ical.PropCategories, string(t.Category))
	}
	if t.Color != "" {
		todo.Props.SetText(propColor, t.Color)
	}
	if t.DueDate != nil {
		todo.Props.SetDateTime(ical.PropDue, t.DueDate.In(loc))
	}
	if p := t.Priority.ICalPriority(); p > 0 {
		todo.Props.SetText(ical.PropPriority, strconv.Itoa(p))
	}

	if t.Completed {
		todo.Props.SetText(ical.PropStatus, "COMPLETED")
		todo.Props.SetText(ical.PropPercentComplete, "100")
		if t.CompletedAt != nil {
			todo.Props.SetDateTime(ical.PropCompleted, t.CompletedAt.UTC())
		}
	} else {
		todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	}

	if opt := recurrence.RRule(t.Rule); opt != nil {
		// set raw: SetText would escape the ';' separators
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = opt.RRuleString()
		todo.Props.Set(prop)
	} else if t.Rule.Pattern == model.PatternCustom {
		todo.Props.SetText(propPattern, string(model.PatternCustom))
		if t.CustomRule != "" {
			todo.Props.SetText(propCustomRule, t.CustomRule)
		}
	}

	if t.OriginalTaskID != nil {
		if uid, ok := uids[*t.OriginalTaskID]; ok && uid != "" {
			todo.Props.SetText(ical.PropRelatedTo, uid)
		}
	}

	return todo
}
