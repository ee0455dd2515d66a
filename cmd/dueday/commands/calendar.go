package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/ics"
	"github.com/gongahkia/dueday/internal/ui"
)

const defaultCalendarDays = 7

func NewCalendarCmd() *cobra.Command {
	var from, to, icsPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show every occurrence of open tasks in a date range",
		Long: `Expand recurring tasks into their occurrences between --from and --to.
Without flags the range is today plus the next six days.`,
		Example: `  dueday calendar --from 2025-06-01 --to 2025-06-30
  dueday calendar --ics june.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			loc := e.loc()
			now := e.svc.Clock.Now()
			start, end, err := calendarRange(from, to, now, loc)
			if err != nil {
				return err
			}
			occ, err := e.svc.Calendar(cmd.Context(), start, end, e.zone)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if icsPath != "" {
				f, err := os.Create(icsPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := ics.NewWriter().WriteOccurrences(cmd.Context(), occ, f, loc); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d occurrences to %s\n", len(occ), icsPath)
				return nil
			}
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(occ)
			}
			if len(occ) == 0 {
				fmt.Fprintln(out, "Nothing due.")
				return nil
			}
			var day time.Time
			for _, o := range occ {
				if d := dates.StartOfDay(o.DueDate, loc); !d.Equal(day) {
					day = d
					fmt.Fprintln(out, ui.Bold(d.Format("Mon Jan 2")))
				}
				marker := ""
				if o.Derived() {
					marker = ui.Dim(fmt.Sprintf(" +%d", o.Index))
				}
				fmt.Fprintf(out, "  %s  #%-4d %s%s\n", o.DueDate.In(loc).Format("15:04"), o.Task.ID, o.Task.Text, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start of the range (date or RFC 3339), default today")
	cmd.Flags().StringVar(&to, "to", "", "End of the range, default six days after --from")
	cmd.Flags().StringVar(&icsPath, "ics", "", "Write the occurrences to an iCalendar file instead")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

// calendarRange resolves the --from/--to flags. A date-only --to covers the
// whole of that day.
func calendarRange(from, to string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	start := dates.StartOfDay(now, loc)
	if from != "" {
		t, _, err := dates.ParseInstant(from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, &duerr.ValidationError{Field: "from", Message: err.Error()}
		}
		start = t
	}
	end := dates.EndOfDay(dates.AddDays(start, defaultCalendarDays-1, loc), loc)
	if to != "" {
		t, dateOnly, err := dates.ParseInstant(to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, &duerr.ValidationError{Field: "to", Message: err.Error()}
		}
		if dateOnly {
			t = dates.EndOfDay(t, loc)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, &duerr.ValidationError{Field: "to", Message: "before from"}
	}
	return start, end, nil
}
