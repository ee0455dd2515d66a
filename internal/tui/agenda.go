package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/tasks"
)

// agendaDays is how far ahead the agenda looks, today included.
const agendaDays = 7

type agendaItem struct {
	occ model.Occurrence
	due dates.DueLabel
}

func (i agendaItem) Title() string {
	return fmt.Sprintf("#%d %s", i.occ.Task.ID, i.occ.Task.Text)
}

func (i agendaItem) Description() string {
	desc := ToneStyle(i.due.Tone).Render(i.due.Text) + " · " + PriorityStyle(i.occ.Task.Priority).Render(string(i.occ.Task.Priority))
	if i.occ.Task.IsRecurring {
		desc += " · " + i.occ.Task.Rule.String()
	}
	return desc
}

func (i agendaItem) FilterValue() string { return i.occ.Task.Text }

// AgendaModel lists the occurrences due over the coming week.
type AgendaModel struct {
	svc     *tasks.Service
	keys    KeyMap
	list    list.Model
	loading bool
	status  string
	err     error
}

func NewAgendaModel(svc *tasks.Service) AgendaModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(ColorPrimary)

	l := list.New(nil, delegate, 60, 14)
	l.Title = "Agenda"
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary).MarginLeft(1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return AgendaModel{svc: svc, keys: DefaultKeyMap(), list: l, loading: true}
}

func (a AgendaModel) Init() tea.Cmd {
	return a.load()
}

type agendaLoadedMsg struct {
	items []list.Item
	err   error
}

type taskCompletedMsg struct {
	done    model.Task
	spawned *model.Task
	err     error
}

func (a AgendaModel) load() tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		now := svc.Clock.Now()
		from := dates.StartOfDay(now, svc.Zone)
		to := dates.EndOfDay(dates.AddDays(from, agendaDays-1, svc.Zone), svc.Zone)
		occ, err := svc.Calendar(context.Background(), from, to, "")
		if err != nil {
			return agendaLoadedMsg{err: err}
		}
		items := make([]list.Item, 0, len(occ))
		for _, o := range occ {
			due := o.DueDate
			items = append(items, agendaItem{occ: o, due: dates.FormatDue(&due, now, svc.Zone)})
		}
		return agendaLoadedMsg{items: items}
	}
}

func (a AgendaModel) complete(id int64) tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		done, spawned, err := svc.Complete(context.Background(), id, "")
		return taskCompletedMsg{done: done, spawned: spawned, err: err}
	}
}

func (a AgendaModel) Update(msg tea.Msg) (AgendaModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.list.SetSize(msg.Width, msg.Height-2)
		return a, nil
	case agendaLoadedMsg:
		a.loading = false
		a.err = msg.err
		if msg.err == nil {
			cmd := a.list.SetItems(msg.items)
			return a, cmd
		}
		return a, nil
	case taskCompletedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.status = fmt.Sprintf("Completed #%d", msg.done.ID)
		if msg.spawned != nil && msg.spawned.DueDate != nil {
			a.status += ", next due " + msg.spawned.DueDate.In(a.svc.Zone).Format(time.DateOnly)
		}
		a.loading = true
		return a, a.load()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Refresh):
			a.loading = true
			return a, a.load()
		case key.Matches(msg, a.keys.Done):
			if item, ok := a.list.SelectedItem().(agendaItem); ok && !item.occ.Derived() {
				return a, a.complete(item.occ.Task.ID)
			}
			a.status = "Only the current occurrence can be completed"
			return a, nil
		}
	}
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a AgendaModel) View() string {
	var body string
	switch {
	case a.err != nil:
		body = ErrorStyle.Render("  Error: " + a.err.Error())
	case a.loading:
		body = MutedStyle.Render("  Loading...")
	case len(a.list.Items()) == 0:
		body = MutedStyle.Render("  Nothing due this week")
	default:
		body = a.list.View()
	}
	parts := []string{body}
	if a.status != "" {
		parts = append(parts, SuccessStyle.Render(a.status))
	}
	parts = append(parts, HelpStyle.Render("d complete · r refresh · esc back"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
