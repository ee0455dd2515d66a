package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/ui"
)

func NewParseCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Show how a task description is read, without saving it",
		Example: `  dueday parse "Pay rent monthly on the 1st"
  dueday parse --json --tz Asia/Singapore "Gym every Monday at 7am until December"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return &duerr.ValidationError{Field: "text", Message: "must not be empty"}
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			parser := nlp.New(nlp.Options{DefaultHour: cfg.DefaultDueHour, DateLocale: cfg.DateLocale})
			loc := cfg.Location()
			if zone, _ := cmd.Flags().GetString("tz"); zone != "" {
				loc, _ = dates.LoadZone(zone)
			}
			now := dates.SystemClock{}.Now()
			parsed := parser.Parse(text, loc, now)

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(parsed)
			}
			printParsed(cmd, parsed, dates.FormatDue(parsed.DueDate, now, loc))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func printParsed(cmd *cobra.Command, p model.ParsedTask, due dates.DueLabel) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %s\n", "Title", ui.Bold(p.CleanedTitle))
	fmt.Fprintf(out, "%-10s %s\n", "Due", ui.Due(due))
	fmt.Fprintf(out, "%-10s %s\n", "Priority", ui.Priority(p.Priority))
	fmt.Fprintf(out, "%-10s %s\n", "Repeats", p.RecurrenceRule.String())
}
