package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/tui"
)

// NewTUICmd creates the 'tui' subcommand.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Long:  "Launch the full-screen terminal interface: quick add, agenda, import and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(cmd)
		},
	}
}

// RunTUI opens the store and runs the bubbletea program with alt-screen.
func RunTUI(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p := tea.NewProgram(tui.NewApp(e.svc, e.cfg), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
