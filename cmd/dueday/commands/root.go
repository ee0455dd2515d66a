package commands

import (
	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/config"
)

// NewRootCmd assembles the dueday command tree. Invoked with no subcommand it
// launches the TUI.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dueday",
		Short:         "Natural-language tasks with recurring due dates",
		Long:          "Add tasks in plain English, track recurring due dates and expand them into a calendar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("db", "", "Task database path (default from config)")
	rootCmd.PersistentFlags().String("tz", "", "IANA timezone for parsing and display (default from config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
			config.SetOverridePath(cfgPath)
		}
		return nil
	}

	rootCmd.AddCommand(NewParseCmd())
	rootCmd.AddCommand(NewAddCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewDoneCmd())
	rootCmd.AddCommand(NewNextCmd())
	rootCmd.AddCommand(NewDeleteCmd())
	rootCmd.AddCommand(NewCalendarCmd())
	rootCmd.AddCommand(NewImportCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewCompletionCmd())
	rootCmd.AddCommand(NewTUICmd())

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return RunTUI(cmd)
	}
	return rootCmd
}
