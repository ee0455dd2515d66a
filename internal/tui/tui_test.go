package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/store"
	"github.com/gongahkia/dueday/internal/tasks"
)

var now = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) *tasks.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "dueday.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	svc := tasks.New(st, nlp.New(nlp.DefaultOptions()), time.UTC, 0)
	svc.Clock = dates.FixedClock(now)
	return svc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInit(t *testing.T) {
	app := NewApp(nil, nil)
	if app.activeView != ViewHome {
		t.Errorf("expected initial view ViewHome, got %d", app.activeView)
	}
}

func TestAppQuitFromHome(t *testing.T) {
	app := NewApp(nil, nil)
	_, cmd := app.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppHelpToggle(t *testing.T) {
	app := NewApp(nil, nil)
	msg := runes("?")

	model, _ := app.Update(msg)
	a := model.(App)
	if !a.showHelp {
		t.Error("expected showHelp=true after pressing ?")
	}

	model, _ = a.Update(msg)
	a = model.(App)
	if a.showHelp {
		t.Error("expected showHelp=false after pressing ? again")
	}
}

func TestAppBackFromChild(t *testing.T) {
	app := NewApp(nil, nil)
	app.activeView = ViewAgenda

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEscape})
	a := model.(App)
	if a.activeView != ViewHome {
		t.Errorf("expected ViewHome after esc, got %d", a.activeView)
	}
}

func TestAppNavigateMsg(t *testing.T) {
	app := NewApp(newService(t), nil)
	model, cmd := app.Update(NavigateMsg{Target: ViewAgenda})
	a := model.(App)
	if a.activeView != ViewAgenda {
		t.Errorf("expected ViewAgenda, got %d", a.activeView)
	}
	if cmd == nil {
		t.Error("expected the agenda to start loading")
	}

	model, _ = a.Update(NavigateMsg{Target: ViewHelp})
	if a = model.(App); !a.showHelp || a.activeView != ViewHome {
		t.Error("expected the help menu entry to open the help overlay")
	}
}

func TestQuitKeyTypesInQuickAdd(t *testing.T) {
	app := NewApp(newService(t), nil)
	model, _ := app.Update(NavigateMsg{Target: ViewQuickAdd})
	model, _ = model.Update(runes("q"))
	a := model.(App)
	if a.quickAdd.input.Value() != "q" {
		t.Errorf("expected q typed into the input, got %q", a.quickAdd.input.Value())
	}
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected ctrl+c to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from ctrl+c")
	}
}

func TestAppViewRenders(t *testing.T) {
	app := NewApp(nil, nil)
	view := app.View()
	if !strings.Contains(view, "dueday") {
		t.Error("expected View to contain 'dueday' title")
	}
}

func TestAppErrorDisplay(t *testing.T) {
	app := NewApp(nil, nil)
	model, _ := app.Update(ErrorMsg{Err: &duerr.NotFoundError{Kind: "task", ID: "9"}})
	a := model.(App)
	view := a.View()
	if !strings.Contains(view, "Not found") || !strings.Contains(view, "Exit code: 3") || !strings.Contains(view, "task may have been deleted") {
		t.Errorf("unexpected error view:\n%s", view)
	}
	model, _ = a.Update(runes("x"))
	if model.(App).err != nil {
		t.Error("expected a key press to dismiss the error")
	}
}

func TestHomeStats(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, text := range []string{"Call the bank at 8am", "Water plants at 6pm", "Renew passport next month"} {
		if _, _, err := svc.QuickAdd(ctx, text, ""); err != nil {
			t.Fatal(err)
		}
	}
	h := NewHomeModel(svc)
	msg := h.Init()()
	h, _ = h.Update(msg)
	if h.stats == nil || h.stats.open != 3 || h.stats.overdue != 1 || h.stats.today != 1 {
		t.Fatalf("unexpected stats %+v", h.stats)
	}
	if view := h.View(); !strings.Contains(view, "3 open") || !strings.Contains(view, "1 overdue") {
		t.Errorf("unexpected home view:\n%s", view)
	}
}

func TestConfigModelView(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultTimezone = "Europe/London"
	c := NewConfigModel(cfg)
	view := c.View()
	for _, want := range []string{"Configuration", "Europe/London", "9:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected config view to contain %q:\n%s", want, view)
		}
	}
}

func TestHomeModelView(t *testing.T) {
	h := NewHomeModel(nil)
	view := h.View()
	if !strings.Contains(view, "dueday") || !strings.Contains(view, "quick add") {
		t.Error("expected home view to contain the title and menu")
	}
}

func TestHelpModelView(t *testing.T) {
	h := NewHelpModel()
	view := h.View()
	if !strings.Contains(view, "Keybindings") {
		t.Error("expected help view to contain 'Keybindings'")
	}
	for _, want := range []string{"Global", "quit", "help", "complete", "$EDITOR"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected help view to contain %q", want)
		}
	}
}

func TestErrorDisplayView(t *testing.T) {
	e := NewErrorDisplay("Invalid text", "must not be empty", 2)
	view := e.View()
	if !strings.Contains(view, "Invalid text") {
		t.Error("expected error display to contain title")
	}
	if !strings.Contains(view, "Exit code: 2") {
		t.Error("expected error display to show exit code")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.Quit.Keys()) == 0 {
		t.Error("expected Quit binding to have keys")
	}
	if len(km.Done.Keys()) == 0 {
		t.Error("expected Done binding to have keys")
	}
}

func TestQuickAddPreviewAndSave(t *testing.T) {
	svc := newService(t)
	q := NewQuickAddModel(svc)

	q, _ = q.Update(runes("Pay rent monthly high priority"))
	if q.preview == nil {
		t.Fatal("expected a live preview")
	}
	if q.preview.Pattern != model.PatternMonthly || q.preview.Priority != model.PriorityHigh {
		t.Errorf("unexpected preview %+v", q.preview)
	}
	view := q.View()
	for _, want := range []string{"Title", "Pay rent", "Tomorrow at 9:00 AM", "High", "monthly"} {
		if !strings.Contains(view, want) {
			t.Errorf("preview missing %q:\n%s", want, view)
		}
	}

	q, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	q, _ = q.Update(cmd())
	if q.err != nil {
		t.Fatalf("save failed: %v", q.err)
	}
	if q.added == nil || q.added.ID == 0 || q.input.Value() != "" || q.preview != nil {
		t.Errorf("expected saved task and cleared input, got %+v", q.added)
	}

	stored, err := svc.List(context.Background(), store.Filter{})
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected 1 stored task, got %d (%v)", len(stored), err)
	}
}

func TestQuickAddEmptyEnter(t *testing.T) {
	q := NewQuickAddModel(newService(t))
	if _, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for empty input")
	}
}

func TestAgendaLoadAndComplete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, _, err := svc.QuickAdd(ctx, "Water plants every day", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.QuickAdd(ctx, "Dentist 06/14/2025", ""); err != nil {
		t.Fatal(err)
	}

	a := NewAgendaModel(svc)
	a, _ = a.Update(a.Init()())
	if a.err != nil {
		t.Fatalf("load failed: %v", a.err)
	}
	// daily from the 12th through the 17th plus the dentist
	if got := len(a.list.Items()); got != 7 {
		t.Fatalf("expected 7 agenda items, got %d", got)
	}
	first := a.list.Items()[0].(agendaItem)
	if first.occ.Task.Text != "Water plants" || first.due.Text != "Tomorrow at 9:00 AM" {
		t.Errorf("unexpected first item %+v", first)
	}

	a, cmd := a.Update(runes("d"))
	if cmd == nil {
		t.Fatal("expected a complete command")
	}
	a, reload := a.Update(cmd())
	if !strings.Contains(a.status, "Completed #1") || !strings.Contains(a.status, "2025-06-13") {
		t.Errorf("unexpected status %q", a.status)
	}
	if reload == nil {
		t.Fatal("expected a reload after completing")
	}
	a, _ = a.Update(reload())
	if got := len(a.list.Items()); got != 6 {
		t.Errorf("expected 6 items after completing, got %d", got)
	}
}

func TestAgendaEmpty(t *testing.T) {
	a := NewAgendaModel(newService(t))
	a, _ = a.Update(a.Init()())
	if !strings.Contains(a.View(), "Nothing due this week") {
		t.Errorf("unexpected view:\n%s", a.View())
	}
}

func TestWindowSizeMsg(t *testing.T) {
	app := NewApp(nil, nil)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a := model.(App)
	if a.width != 120 || a.height != 40 {
		t.Errorf("expected 120x40, got %dx%d", a.width, a.height)
	}
}
