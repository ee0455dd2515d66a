package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// helpSection groups bindings under a heading in the overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// HelpModel displays keybinding reference as a modal overlay.
type HelpModel struct {
	sections []helpSection
}

// NewHelpModel lists the bindings of DefaultKeyMap plus the few keys that only
// one view handles.
func NewHelpModel() HelpModel {
	k := DefaultKeyMap()
	return HelpModel{sections: []helpSection{
		{"Global", []key.Binding{
			k.Quit,
			k.Help,
			k.Back,
			key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit while typing")),
		}},
		{"Lists", []key.Binding{k.Up, k.Down, k.Enter}},
		{"Agenda", []key.Binding{k.Done, k.Refresh}},
		{"Config", []key.Binding{
			key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "open in $EDITOR")),
		}},
	}}
}

func (h HelpModel) Init() tea.Cmd { return nil }

func (h HelpModel) Update(_ tea.Msg) (HelpModel, tea.Cmd) {
	return h, nil
}

func (h HelpModel) View() string {
	var b strings.Builder
	for i, s := range h.sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(LabelStyle.Render(s.title) + "\n")
		for _, bind := range s.bindings {
			help := bind.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", help.Key, help.Desc)
		}
	}

	content := BorderStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			TitleStyle.Render("Keybindings"),
			"",
			b.String(),
		),
	)
	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center, content)
}
