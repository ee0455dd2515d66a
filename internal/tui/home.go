package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/store"
	"github.com/gongahkia/dueday/internal/tasks"
)

type menuItem struct {
	title string
	desc  string
	view  View
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

func homeMenu() []list.Item {
	return []list.Item{
		menuItem{"quick add", "Type a task in plain English", ViewQuickAdd},
		menuItem{"agenda", "Occurrences due in the coming week", ViewAgenda},
		menuItem{"import", "Load tasks from a text, CSV or iCalendar file", ViewImport},
		menuItem{"config", "Settings and where they live", ViewConfig},
		menuItem{"help", "Keybindings", ViewHelp},
	}
}

// homeStats counts the open tasks shown above the menu.
type homeStats struct {
	open, overdue, today int
}

type homeStatsMsg homeStats

// HomeModel is the main menu with a one-line summary of open tasks.
type HomeModel struct {
	svc   *tasks.Service
	list  list.Model
	keys  KeyMap
	stats *homeStats
}

// NewHomeModel builds the menu. A nil svc shows the menu without counts.
func NewHomeModel(svc *tasks.Service) HomeModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(ColorSecondary)

	l := list.New(homeMenu(), delegate, 60, 14)
	l.Title = "dueday"
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginLeft(1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return HomeModel{svc: svc, list: l, keys: DefaultKeyMap()}
}

// Init loads the counts; the app calls it again when returning home.
func (h HomeModel) Init() tea.Cmd {
	if h.svc == nil {
		return nil
	}
	svc := h.svc
	return func() tea.Msg {
		open, err := svc.List(context.Background(), store.Filter{})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		now := svc.Clock.Now()
		s := homeStats{open: len(open)}
		for _, t := range open {
			switch {
			case t.IsOverdue(now):
				s.overdue++
			case t.DueDate != nil && dates.SameDay(*t.DueDate, now, svc.Zone):
				s.today++
			}
		}
		return homeStatsMsg(s)
	}
}

func (h HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case homeStatsMsg:
		s := homeStats(msg)
		h.stats = &s
		return h, nil
	case tea.WindowSizeMsg:
		h.list.SetSize(msg.Width, msg.Height-1)
		return h, nil
	case tea.KeyMsg:
		if key.Matches(msg, h.keys.Enter) {
			if item, ok := h.list.SelectedItem().(menuItem); ok {
				return h, func() tea.Msg { return NavigateMsg{Target: item.view} }
			}
		}
	}
	var cmd tea.Cmd
	h.list, cmd = h.list.Update(msg)
	return h, cmd
}

func (h HomeModel) View() string {
	if h.stats == nil {
		return h.list.View()
	}
	summary := fmt.Sprintf(" %d open", h.stats.open)
	if h.stats.overdue > 0 {
		summary += " · " + ToneStyle(dates.ToneOverdue).Render(fmt.Sprintf("%d overdue", h.stats.overdue))
	}
	if h.stats.today > 0 {
		summary += " · " + ToneStyle(dates.ToneToday).Render(fmt.Sprintf("%d due today", h.stats.today))
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, h.list.View())
}
