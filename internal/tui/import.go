package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/importer"
	"github.com/gongahkia/dueday/internal/tasks"
)

// ImportModel picks a file and stores the tasks it holds.
type ImportModel struct {
	svc        *tasks.Service
	locale     string
	filePicker FilePickerModel
	path       string
	format     importer.Format
	running    bool
	done       bool
	summary    string
	warnings   []string
	err        error
}

func NewImportModel(svc *tasks.Service, locale string) ImportModel {
	return ImportModel{svc: svc, locale: locale, filePicker: NewFilePickerModel("")}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

type importDoneMsg struct {
	summary  string
	warnings []string
	err      error
}

func (m ImportModel) Update(msg tea.Msg) (ImportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case FilePickerMsg:
		m.path = msg.Path
		m.format = msg.Format
		m.running = true
		return m, m.run(msg.Path)
	case importDoneMsg:
		m.running = false
		m.done = true
		m.summary = msg.summary
		m.warnings = msg.warnings
		m.err = msg.err
		return m, nil
	}
	if m.running || m.done {
		return m, nil
	}
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)
	return m, cmd
}

func (m ImportModel) run(path string) tea.Cmd {
	svc, locale := m.svc, m.locale
	return func() tea.Msg {
		ctx := context.Background()
		im := importer.New(svc.Parser, locale, svc.Zone, svc.Clock.Now())
		read, err := im.Tasks(ctx, path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		saved := svc.CreateAll(ctx, read.Items, "", nil)
		summary := fmt.Sprintf("Imported %d of %d tasks", saved.SuccessCount(), read.Total)
		if n := len(read.Errors) + len(saved.Errors); n > 0 {
			summary += fmt.Sprintf(", %d skipped", n)
		}
		return importDoneMsg{summary: summary, warnings: read.Warnings}
	}
}

func (m ImportModel) View() string {
	header := SubtitleStyle.Render("Import")

	var body string
	switch {
	case m.running:
		body = MutedStyle.Render(fmt.Sprintf("  Importing %s as %s...", m.path, m.format))
	case m.err != nil:
		body = ErrorStyle.Render("  Error: " + m.err.Error())
	case m.done:
		body = SuccessStyle.Render("  " + m.summary)
		if len(m.warnings) > 0 {
			body += "\n" + WarningStyle.Render("  "+strings.Join(m.warnings, "\n  "))
		}
	default:
		body = m.filePicker.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}
