package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/tasks"
)

// QuickAddModel reads a free-text task and previews the parse on every keystroke.
type QuickAddModel struct {
	svc     *tasks.Service
	keys    KeyMap
	input   textinput.Model
	preview *model.ParsedTask
	added   *model.Task
	err     error
}

func NewQuickAddModel(svc *tasks.Service) QuickAddModel {
	ti := textinput.New()
	ti.Placeholder = "Pay rent monthly on the 1st"
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()
	return QuickAddModel{svc: svc, keys: DefaultKeyMap(), input: ti}
}

func (q QuickAddModel) Init() tea.Cmd {
	return textinput.Blink
}

type taskAddedMsg struct {
	task model.Task
	err  error
}

func (q QuickAddModel) Update(msg tea.Msg) (QuickAddModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taskAddedMsg:
		q.err = msg.err
		if msg.err == nil {
			q.added = &msg.task
			q.input.Reset()
			q.preview = nil
		}
		return q, nil
	case tea.KeyMsg:
		if key.Matches(msg, q.keys.Enter) {
			text := strings.TrimSpace(q.input.Value())
			if text == "" {
				return q, nil
			}
			return q, q.add(text)
		}
	}

	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	q.refresh()
	return q, cmd
}

func (q *QuickAddModel) refresh() {
	text := strings.TrimSpace(q.input.Value())
	if text == "" || q.svc == nil {
		q.preview = nil
		return
	}
	p := q.svc.Parse(text, "")
	q.preview = &p
}

func (q QuickAddModel) add(text string) tea.Cmd {
	svc := q.svc
	return func() tea.Msg {
		task, _, err := svc.QuickAdd(context.Background(), text, "")
		return taskAddedMsg{task: task, err: err}
	}
}

func (q QuickAddModel) View() string {
	header := SubtitleStyle.Render("Quick add")
	parts := []string{header, "", "  " + q.input.View(), ""}

	if q.preview != nil {
		parts = append(parts, BorderStyle.Render(q.previewView()))
	}
	switch {
	case q.err != nil:
		parts = append(parts, ErrorStyle.Render("Error: "+q.err.Error()))
	case q.added != nil:
		parts = append(parts, SuccessStyle.Render(fmt.Sprintf("Added #%d %s", q.added.ID, q.added.Text)))
	}
	parts = append(parts, HelpStyle.Render("enter save · esc back"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (q QuickAddModel) previewView() string {
	p := q.preview
	due := dates.FormatDue(p.DueDate, q.svc.Clock.Now(), q.svc.Zone)
	priority := p.Priority
	if priority == model.PriorityNone {
		priority = model.PriorityMedium
	}
	rows := []string{
		LabelStyle.Render("Title") + p.CleanedTitle,
		LabelStyle.Render("Due") + ToneStyle(due.Tone).Render(due.Text),
		LabelStyle.Render("Priority") + PriorityStyle(priority).Render(string(priority)),
		LabelStyle.Render("Repeats") + p.RecurrenceRule.String(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
