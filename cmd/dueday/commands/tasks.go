package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/store"
	"github.com/gongahkia/dueday/internal/ui"
)

func NewAddCmd() *cobra.Command {
	var notes, category, color string

	cmd := &cobra.Command{
		Use:     "add <text>",
		Short:   "Parse a task description and save it",
		Example: `  dueday add "Water the plants every 3 days"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return &duerr.ValidationError{Field: "text", Message: "must not be empty"}
			}
			parsed := e.svc.Parse(text, e.zone)
			task := model.Task{
				Text:     parsed.CleanedTitle,
				Notes:    notes,
				Color:    color,
				DueDate:  parsed.DueDate,
				Priority: parsed.Priority,
				Rule:     parsed.RecurrenceRule,
			}
			if task.Category, err = model.ParseCategory(category); err != nil {
				return err
			}
			created, err := e.svc.Create(cmd.Context(), task, e.zone)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", created.ID, ui.Bold(created.Text))
			printDetail(cmd.OutOrStdout(), created, e.svc.Clock.Now(), e.loc())
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes to attach")
	cmd.Flags().StringVar(&category, "category", "", "Category (Home, Work, Health, ...)")
	cmd.Flags().StringVar(&color, "color", "", "Display color as #RRGGBB")
	return cmd
}

func NewListCmd() *cobra.Command {
	var all bool
	var category, before string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			f := store.Filter{IncludeCompleted: all}
			if category != "" {
				if f.Category, err = model.ParseCategory(category); err != nil {
					return err
				}
			}
			if before != "" {
				t, dateOnly, err := dates.ParseInstant(before, e.loc())
				if err != nil {
					return &duerr.ValidationError{Field: "before", Message: err.Error()}
				}
				if dateOnly {
					t = dates.EndOfDay(t, e.loc())
				}
				f.DueBefore = &t
			}

			list, err := e.svc.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			now := e.svc.Clock.Now()
			for _, t := range list {
				printRow(out, t, now, e.loc())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category")
	cmd.Flags().StringVar(&before, "before", "", "Only tasks due on or before this date")
	return cmd
}

func NewDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task; a recurring task moves to its next occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			done, spawned, err := e.svc.Complete(cmd.Context(), id, e.zone)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s #%d %s\n", ui.Green("Completed"), done.ID, done.Text)
			switch {
			case spawned != nil:
				fmt.Fprintf(out, "Next #%d due %s\n", spawned.ID, ui.Due(dates.FormatDue(spawned.DueDate, e.svc.Clock.Now(), e.loc())))
			case done.IsRecurring:
				fmt.Fprintln(out, "Series ended.")
			}
			return nil
		},
	}
}

func NewNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <id>",
		Short: "Preview the due date a recurring task gets when completed now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			next, err := e.svc.Next(cmd.Context(), id, e.zone)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if next == nil {
				fmt.Fprintln(out, "No further occurrences.")
				return nil
			}
			fmt.Fprintln(out, next.In(e.loc()).Format(time.RFC3339))
			return nil
		},
	}
}

func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, &duerr.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a task id", s)}
	}
	return id, nil
}

// printRow writes one line per task. Columns are padded before coloring so
// escape codes do not shift them.
func printRow(out io.Writer, t model.Task, now time.Time, loc *time.Location) {
	due := dates.FormatDue(t.DueDate, now, loc)
	mark := " "
	switch {
	case t.Completed:
		mark = "x"
	case t.IsOverdue(now):
		mark = "!"
	}
	prio := string(t.Priority)
	if prio == "" {
		prio = "-"
	}
	repeats := ""
	if t.IsRecurring {
		repeats = ui.Cyan(" (" + t.Rule.String() + ")")
	}
	fmt.Fprintf(out, "[%s] %4d  %s %s %s%s\n", mark, t.ID,
		ui.Due(dates.DueLabel{Text: fmt.Sprintf("%-22s", due.Text), Tone: due.Tone}),
		padded(ui.Priority(t.Priority), prio, 7),
		t.Text, repeats)
}

func padded(colored, plain string, width int) string {
	if n := width - len(plain); n > 0 {
		return colored + strings.Repeat(" ", n)
	}
	return colored
}

func printDetail(out io.Writer, t model.Task, now time.Time, loc *time.Location) {
	fmt.Fprintf(out, "  %-10s %s\n", "Due", ui.Due(dates.FormatDue(t.DueDate, now, loc)))
	fmt.Fprintf(out, "  %-10s %s\n", "Priority", ui.Priority(t.Priority))
	fmt.Fprintf(out, "  %-10s %s\n", "Category", t.Category)
	if t.IsRecurring {
		fmt.Fprintf(out, "  %-10s %s\n", "Repeats", t.Rule.String())
	}
	if t.NextDueDate != nil {
		fmt.Fprintf(out, "  %-10s %s\n", "Then", t.NextDueDate.In(loc).Format("Jan 2, 2006 3:04 PM"))
	}
}
