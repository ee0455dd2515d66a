package ics

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/recurrence"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseFile(ctx context.Context, filePath string, loc *time.Location) (*duerr.PartialResult[model.Task], error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ICS file: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f, loc)
}

// Parse reads every VTODO and VEVENT in r. Floating times are read in loc.
// Components that cannot become a task are recorded in the result's errors;
// only a file that is not iCalendar at all fails outright.
func (p *Parser) Parse(ctx context.Context, r io.Reader, loc *time.Location) (*duerr.PartialResult[model.Task], error) {
	if loc == nil {
		loc = time.UTC
	}
	result := duerr.NewPartialResult[model.Task]()
	stream := duerr.NewStreamingICSParser(r)
	index := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cal, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if index == 0 {
				return nil, err
			}
			result.AddWarning("stopped reading: %v", err)
			break
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompToDo && comp.Name != ical.CompEvent {
				continue
			}
			index++
			task, err := p.parseComponent(comp, loc)
			if err != nil {
				uid, _ := comp.Props.Text(ical.PropUID)
				result.AddError(index, uid, err.Error(), err)
				continue
			}
			if task.Rule.Pattern == model.PatternCustom && task.CustomRule != "" {
				result.AddWarning("%q repeats as %s, which dueday keeps but does not expand", task.Text, task.CustomRule)
			}
			result.Add(task)
		}
	}

	return result, nil
}

func (p *Parser) parseComponent(comp *ical.Component, loc *time.Location) (model.Task, error) {
	var t model.Task

	if uid, err := comp.Props.Text(ical.PropUID); err == nil {
		t.UID = uid
	}
	if summary, err := comp.Props.Text(ical.PropSummary); err == nil {
		t.Text = strings.TrimSpace(summary)
	}
	if t.Text == "" {
		return t, &duerr.ValidationError{Field: "SUMMARY", Message: "missing"}
	}
	if desc, err := comp.Props.Text(ical.PropDescription); err == nil {
		t.Notes = desc
	}
	if categories, err := comp.Props.Text(ical.PropCategories); err == nil {
		first := strings.TrimSpace(strings.Split(categories, ",")[0])
		if c, err := model.ParseCategory(first); err == nil {
			t.Category = c
		}
	}
	if color, err := comp.Props.Text(propColor); err == nil {
		t.Color = color
	}

	dueProp := ical.PropDue
	if comp.Name == ical.CompEvent || comp.Props.Get(ical.PropDue) == nil {
		dueProp = ical.PropDateTimeStart
	}
	if prop := comp.Props.Get(dueProp); prop != nil {
		due, err := parseDateTime(prop, loc)
		if err != nil {
			return t, &duerr.ParseError{File: "ics", Message: dueProp + " " + prop.Value, Err: err}
		}
		t.DueDate = &due
	}

	if prop := comp.Props.Get(ical.PropPriority); prop != nil {
		v, _ := strconv.Atoi(strings.TrimSpace(prop.Value))
		t.Priority = model.PriorityFromICal(v)
	}

	if status, err := comp.Props.Text(ical.PropStatus); err == nil && strings.EqualFold(status, "COMPLETED") {
		t.Completed = true
		if prop := comp.Props.Get(ical.PropCompleted); prop != nil {
			if at, err := parseDateTime(prop, loc); err == nil {
				t.CompletedAt = &at
			}
		}
	}

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		opt, err := rrule.StrToROption(prop.Value)
		if err != nil {
			return t, &duerr.ParseError{File: "ics", Message: "RRULE " + prop.Value, Err: err}
		}
		rule, ok := recurrence.FromRRule(opt)
		t.Rule = rule
		if !ok {
			t.CustomRule = prop.Value
		}
	} else if pattern, err := comp.Props.Text(propPattern); err == nil && strings.EqualFold(pattern, string(model.PatternCustom)) {
		t.Rule = model.RecurrenceRule{Pattern: model.PatternCustom, Interval: 1}
		t.CustomRule, _ = comp.Props.Text(propCustomRule)
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// parseDateTime reads DATE and DATE-TIME values. A floating time, or a TZID
// that does not resolve, is read in loc; all-day dates are local midnight.
func parseDateTime(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if vt := prop.Params.Get(ical.ParamValue); strings.EqualFold(vt, "DATE") || len(prop.Value) == len("20060102") {
		d, err := time.ParseInLocation("20060102", prop.Value, loc)
		if err != nil {
			return time.Time{}, err
		}
		return d, nil
	}
	if strings.HasSuffix(prop.Value, "Z") {
		return time.Parse("20060102T150405Z", prop.Value)
	}
	zone := loc
	if tzid := prop.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			zone = l
		}
	}
	return time.ParseInLocation("20060102T150405", prop.Value, zone)
}
