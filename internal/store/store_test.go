package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
)

var fixedNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "dueday.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func newTask(text string, due *time.Time) *model.Task {
	t := &model.Task{Text: text, DueDate: due}
	t.Normalize()
	return t
}

func TestCreateGetRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	due := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)
	ends := time.Date(2025, 12, 31, 23, 59, 59, 999000000, time.UTC)
	task := newTask("Take medicine", &due)
	task.Notes = "with water"
	task.Category = model.CategoryHealth
	task.Color = "#22C55E"
	task.Priority = model.PriorityHigh
	task.Rule = model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1, EndsAt: &ends}
	task.IsRecurring = true

	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == 0 || task.UID == "" {
		t.Fatalf("expected id and uid, got %d %q", task.ID, task.UID)
	}

	got, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != "Take medicine" || got.Notes != "with water" || got.Category != model.CategoryHealth {
		t.Errorf("unexpected fields %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due = %v, want %s", got.DueDate, due)
	}
	if got.Rule.EndsAt == nil || !got.Rule.EndsAt.Equal(ends) {
		t.Errorf("ends = %v, want %s", got.Rule.EndsAt, ends)
	}
	if !got.IsRecurring || got.Rule.Pattern != model.PatternDaily || got.Priority != model.PriorityHigh {
		t.Errorf("unexpected rule %+v priority %q", got.Rule, got.Priority)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("created = %s", got.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), 42)
	var nf *duerr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.Delete(context.Background(), 42); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError from Delete, got %v", err)
	}
	if err := s.Update(context.Background(), &model.Task{ID: 42, Text: "x"}); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError from Update, got %v", err)
	}
}

func TestListOrderAndFilter(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	d1 := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	late := newTask("Later", &d1)
	soon := newTask("Sooner", &d2)
	soon.Category = model.CategoryWork
	undated := newTask("Someday", nil)
	for _, task := range []*model.Task{late, undated, soon} {
		if err := s.Create(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Sooner", "Later", "Someday"}
	if len(all) != len(want) {
		t.Fatalf("got %d tasks", len(all))
	}
	for i := range want {
		if all[i].Text != want[i] {
			t.Errorf("position %d = %q, want %q", i, all[i].Text, want[i])
		}
	}

	work, _ := s.List(ctx, Filter{Category: model.CategoryWork})
	if len(work) != 1 || work[0].Text != "Sooner" {
		t.Errorf("category filter gave %+v", work)
	}
	cutoff := time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC)
	before, _ := s.List(ctx, Filter{DueBefore: &cutoff})
	if len(before) != 1 || before[0].Text != "Sooner" {
		t.Errorf("due filter gave %+v", before)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	task := newTask("Draft", nil)
	if err := s.Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	task.Text = "Final"
	task.Priority = model.PriorityLow
	if err := s.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(ctx, task.ID)
	if got.Text != "Final" || got.Priority != model.PriorityLow {
		t.Errorf("update not persisted: %+v", got)
	}
	if err := s.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, task.ID); err == nil {
		t.Error("expected task to be gone")
	}
}

func TestCompleteSpawnsInSeries(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	due := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	task := newTask("Stretch", &due)
	task.Rule = model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1}
	task.IsRecurring = true
	if err := s.Create(ctx, task); err != nil {
		t.Fatal(err)
	}

	spawn := func(done model.Task) *model.Task {
		next := done
		d := done.DueDate.AddDate(0, 0, 1)
		next.DueDate = &d
		return &next
	}

	done, spawned, err := s.Complete(ctx, task.ID, fixedNow, spawn)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(fixedNow) {
		t.Errorf("task not marked done: %+v", done)
	}
	if spawned == nil || spawned.ID == task.ID || spawned.Completed {
		t.Fatalf("unexpected spawned task %+v", spawned)
	}
	if spawned.OriginalTaskID == nil || *spawned.OriginalTaskID != task.ID {
		t.Errorf("spawned task not linked: %v", spawned.OriginalTaskID)
	}
	if spawned.UID == done.UID {
		t.Error("spawned task reused the uid")
	}

	// the grandchild still points at the series root
	_, grandchild, err := s.Complete(ctx, spawned.ID, fixedNow, spawn)
	if err != nil {
		t.Fatal(err)
	}
	if *grandchild.OriginalTaskID != task.ID {
		t.Errorf("expected series root %d, got %d", task.ID, *grandchild.OriginalTaskID)
	}

	series, _ := s.List(ctx, Filter{SeriesID: task.ID, IncludeCompleted: true})
	if len(series) != 3 {
		t.Errorf("expected 3 tasks in series, got %d", len(series))
	}
	open, _ := s.List(ctx, Filter{})
	if len(open) != 1 || open[0].ID != grandchild.ID {
		t.Errorf("expected only the newest task open, got %+v", open)
	}
}

func TestCompleteTwice(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	task := newTask("Once", nil)
	if err := s.Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	if _, spawned, err := s.Complete(ctx, task.ID, fixedNow, nil); err != nil || spawned != nil {
		t.Fatalf("first completion: %v, %v", spawned, err)
	}
	_, _, err := s.Complete(ctx, task.ID, fixedNow, nil)
	var validErr *duerr.ValidationError
	if !errors.As(err, &validErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dueday.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Create(context.Background(), newTask("Persist", nil)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	tasks, err := s.List(context.Background(), Filter{})
	if err != nil || len(tasks) != 1 {
		t.Errorf("expected persisted task, got %v, %v", tasks, err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestSqliteDSN(t *testing.T) {
	if got := sqliteDSN("file:test.db?mode=memory"); got != "file:test.db?mode=memory" {
		t.Errorf("file: DSN rewritten to %s", got)
	}
	dsn := sqliteDSN("/tmp/x.db")
	if dsn[:5] != "file:" {
		t.Errorf("expected file URI, got %s", dsn)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}
