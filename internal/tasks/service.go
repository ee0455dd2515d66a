// Package tasks implements the task operations shared by the CLI, the HTTP
// API and the TUI.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/recurrence"
	"github.com/gongahkia/dueday/internal/store"
)

// Store is the persistence the service needs; *store.Store satisfies it.
type Store interface {
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context, f store.Filter) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64, completedAt time.Time, next store.NextFunc) (model.Task, *model.Task, error)
	Ping(ctx context.Context) error
}

type Service struct {
	Store    Store
	Parser   *nlp.Parser
	Clock    dates.Clock
	Zone     *time.Location
	Expander recurrence.Expander
}

// New wires a service with the system clock.
func New(st Store, parser *nlp.Parser, zone *time.Location, maxOccurrences int) *Service {
	if zone == nil {
		zone = time.UTC
	}
	return &Service{
		Store:    st,
		Parser:   parser,
		Clock:    dates.SystemClock{},
		Zone:     zone,
		Expander: recurrence.Expander{MaxOccurrences: maxOccurrences, Logger: log.Default()},
	}
}

// zone resolves an IANA name, falling back to the service zone.
func (s *Service) zone(name string) *time.Location {
	if name == "" {
		return s.Zone
	}
	loc, ok := dates.LoadZone(name)
	if !ok {
		log.Warn("unknown timezone, using UTC", "zone", name)
	}
	return loc
}

// Parse runs the parser at the current instant.
func (s *Service) Parse(text, zoneName string) model.ParsedTask {
	return s.Parser.Parse(text, s.zone(zoneName), s.Clock.Now())
}

// QuickAdd parses text and stores the result as a new task.
func (s *Service) QuickAdd(ctx context.Context, text, zoneName string) (model.Task, model.ParsedTask, error) {
	if text == "" {
		return model.Task{}, model.ParsedTask{}, &duerr.ValidationError{Field: "taskTitle", Message: "must not be empty"}
	}
	parsed := s.Parse(text, zoneName)
	task := FromParsed(parsed)
	created, err := s.Create(ctx, task, zoneName)
	return created, parsed, err
}

// FromParsed builds an unsaved task from a parse result.
func FromParsed(p model.ParsedTask) model.Task {
	return model.Task{
		Text:     p.CleanedTitle,
		DueDate:  p.DueDate,
		Priority: p.Priority,
		Rule:     p.RecurrenceRule,
	}
}

func (s *Service) Create(ctx context.Context, task model.Task, zoneName string) (model.Task, error) {
	task.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	task.NextDueDate = s.following(task, s.zone(zoneName))
	if err := s.Store.Create(ctx, &task); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	log.Debug("task created", "id", task.ID, "rule", task.Rule.String())
	return task, nil
}

// CreateAll stores each task independently; one bad task does not stop the
// rest. progress, when set, is called once per task.
func (s *Service) CreateAll(ctx context.Context, list []model.Task, zoneName string, progress func()) *duerr.PartialResult[model.Task] {
	result := duerr.NewPartialResult[model.Task]()
	for i, t := range list {
		created, err := s.Create(ctx, t, zoneName)
		if progress != nil {
			progress()
		}
		if err != nil {
			result.AddError(i, t.Text, "not saved", err)
			continue
		}
		result.Add(created)
	}
	return result
}

func (s *Service) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.Filter) ([]model.Task, error) {
	return s.Store.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, task model.Task, zoneName string) (model.Task, error) {
	current, err := s.Store.Get(ctx, task.ID)
	if err != nil {
		return model.Task{}, err
	}
	task.UID = current.UID
	task.CreatedAt = current.CreatedAt
	task.OriginalTaskID = current.OriginalTaskID
	task.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	task.NextDueDate = s.following(task, s.zone(zoneName))
	if err := s.Store.Update(ctx, &task); err != nil {
		return model.Task{}, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.Store.Delete(ctx, id)
}

// Complete marks a task done. A recurring task is replaced by its next
// occurrence, which is returned as spawned.
func (s *Service) Complete(ctx context.Context, id int64, zoneName string) (done model.Task, spawned *model.Task, err error) {
	loc := s.zone(zoneName)
	now := s.Clock.Now()
	done, spawned, err = s.Store.Complete(ctx, id, now, func(t model.Task) *model.Task {
		if !t.IsRecurring {
			return nil
		}
		due := recurrence.Advance(t, now, loc)
		if due == nil {
			return nil
		}
		next := t
		next.DueDate = due
		next.NextDueDate = s.following(next, loc)
		return &next
	})
	if err != nil {
		return model.Task{}, nil, err
	}
	if spawned != nil {
		log.Info("recurring task advanced", "id", done.ID, "next", spawned.ID, "due", spawned.DueDate.Format(time.RFC3339))
	}
	return done, spawned, nil
}

// Next previews the due date Complete would give the replacement task.
func (s *Service) Next(ctx context.Context, id int64, zoneName string) (*time.Time, error) {
	t, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsRecurring {
		return nil, &duerr.ValidationError{Field: "id", Message: "task " + strconv.FormatInt(id, 10) + " does not repeat"}
	}
	return recurrence.Advance(t, s.Clock.Now(), s.zone(zoneName)), nil
}

// Calendar expands every open task over [from, to], sorted by due date.
// Tasks without a due date are left out.
func (s *Service) Calendar(ctx context.Context, from, to time.Time, zoneName string) ([]model.Occurrence, error) {
	if to.Before(from) {
		return nil, &duerr.ValidationError{Field: "to", Message: "before from"}
	}
	loc := s.zone(zoneName)
	open, err := s.Store.List(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	var out []model.Occurrence
	for _, t := range open {
		if t.DueDate == nil {
			continue
		}
		for _, o := range s.Expander.Expand(t, from, to, loc) {
			// non-recurring tasks come back unfiltered
			if o.DueDate.Before(from) || o.DueDate.After(to) {
				continue
			}
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].Task.ID < out[j].Task.ID
	})
	return out, nil
}

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

// following is the occurrence after the task's due date, stored as
// NextDueDate for display.
func (s *Service) following(t model.Task, loc *time.Location) *time.Time {
	if t.DueDate == nil || !t.Rule.Pattern.Expandable() {
		return nil
	}
	next, ok := recurrence.Step(t.DueDate.In(loc), t.Rule, 1, loc)
	if !ok || (t.Rule.EndsAt != nil && next.After(*t.Rule.EndsAt)) {
		return nil
	}
	return &next
}
