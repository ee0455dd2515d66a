package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	duerr "github.com/gongahkia/dueday/internal/errors"
)

// ErrorDisplay is the overlay shown for a failed action. Code is the exit
// code the CLI would use for the same error.
type ErrorDisplay struct {
	title   string
	message string
	hint    string
	code    int
}

func NewErrorDisplay(title, message string, code int) ErrorDisplay {
	return ErrorDisplay{title: title, message: message, code: code}
}

// errorDisplayFor titles err by its kind and adds a hint where one helps.
func errorDisplayFor(err error) ErrorDisplay {
	d := NewErrorDisplay("Error", err.Error(), duerr.ExitCode(err))
	var (
		validErr    *duerr.ValidationError
		notFoundErr *duerr.NotFoundError
		storeErr    *duerr.StoreError
		parseErr    *duerr.ParseError
	)
	switch {
	case errors.As(err, &validErr):
		d.title = "Invalid " + validErr.Field
	case errors.As(err, &notFoundErr):
		d.title = "Not found"
		d.hint = "the " + notFoundErr.Kind + " may have been deleted elsewhere; press r in the agenda to reload"
	case errors.As(err, &storeErr):
		d.title = "Storage error"
		if storeErr.Busy {
			d.hint = "another dueday process holds the database"
		}
	case errors.As(err, &parseErr):
		d.title = "Could not read " + parseErr.File
	}
	return d
}

func (e ErrorDisplay) Init() tea.Cmd { return nil }

func (e ErrorDisplay) Update(msg tea.Msg) (ErrorDisplay, tea.Cmd) {
	return e, nil
}

func (e ErrorDisplay) View() string {
	lines := []string{
		ErrorStyle.Render("✗ " + e.title),
		"",
		fmt.Sprintf("  %s\n  Exit code: %d", e.message, e.code),
	}
	if e.hint != "" {
		lines = append(lines, WarningStyle.Render("  "+e.hint))
	}
	lines = append(lines, "", MutedStyle.Render("  press any key to continue"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
