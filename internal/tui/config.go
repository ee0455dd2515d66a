package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/config"
)

// ConfigModel shows the settings the session runs with and opens the file in
// $EDITOR. Edits take effect on the next start.
type ConfigModel struct {
	cfg    *config.Config
	path   string
	exists bool
	err    error
}

func NewConfigModel(cfg *config.Config) ConfigModel {
	path := config.ConfigPath()
	_, statErr := os.Stat(path)
	return ConfigModel{cfg: cfg, path: path, exists: statErr == nil}
}

func (c ConfigModel) Init() tea.Cmd { return nil }

type configEditedMsg struct {
	err error
}

func (c ConfigModel) Update(msg tea.Msg) (ConfigModel, tea.Cmd) {
	switch msg := msg.(type) {
	case configEditedMsg:
		if msg.err != nil {
			return c, func() tea.Msg { return ErrorMsg{Err: msg.err} }
		}
		// reload to surface validation errors right away
		if _, err := config.LoadFrom(c.path); err != nil {
			c.err = err
			return c, nil
		}
		c.err = nil
		c.exists = true
		return c, nil
	case tea.KeyMsg:
		if msg.String() == "e" {
			return c, c.edit()
		}
	}
	return c, nil
}

// edit creates the file with defaults if needed, then hands the terminal to
// the editor.
func (c ConfigModel) edit() tea.Cmd {
	if !c.exists {
		if err := config.Init(c.path); err != nil {
			return func() tea.Msg { return ErrorMsg{Err: err} }
		}
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, c.path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return configEditedMsg{err: err}
	})
}

func (c ConfigModel) rows() [][2]string {
	if c.cfg == nil {
		return nil
	}
	return [][2]string{
		{"Timezone", c.cfg.DefaultTimezone},
		{"Due hour", strconv.Itoa(c.cfg.DefaultDueHour) + ":00"},
		{"Dates", c.cfg.DateLocale},
		{"Max occ.", strconv.Itoa(c.cfg.MaxOccurrences)},
		{"Database", c.cfg.DBPath},
		{"Listen", c.cfg.Listen},
		{"Log level", c.cfg.LogLevel},
		{"Color", c.cfg.Color},
	}
}

func (c ConfigModel) View() string {
	header := SubtitleStyle.Render("Configuration")

	var b strings.Builder
	for _, r := range c.rows() {
		fmt.Fprintf(&b, "  %s %s\n", LabelStyle.Render(r[0]), r[1])
	}
	where := "  " + c.path
	if !c.exists {
		where += MutedStyle.Render(" (not created, using defaults)")
	}

	parts := []string{header, where, "", b.String()}
	if c.err != nil {
		parts = append(parts, ErrorStyle.Render("  "+c.err.Error()))
	}
	parts = append(parts, HelpStyle.Render("e edit in $EDITOR · changes apply on restart"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
