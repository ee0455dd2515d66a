package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/ics"
	"github.com/gongahkia/dueday/internal/importer"
	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/store"
)

func NewImportCmd() *cobra.Command {
	var dryRun, quiet bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a text, CSV or iCalendar file",
		Long: `Import tasks from a file. The format follows the extension:

  .csv          one task per row; a title column is required, and notes,
                category, priority and due columns are optional
  .ics / .ical  VTODO components
  anything else one free-text task per line, # starts a comment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			duerr.NewSignalHandler(func() { e.Close() }).Start()

			ctx := cmd.Context()
			im := importer.New(e.svc.Parser, e.cfg.DateLocale, e.loc(), e.svc.Clock.Now())
			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetDescription("Reading"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				im.Progress = func() { bar.Add(1) }
			}

			read, err := im.Tasks(ctx, args[0])
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range read.Warnings {
				fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
			}
			for _, ie := range read.Errors {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", ie.Error())
			}
			if dryRun {
				now := e.svc.Clock.Now()
				for _, t := range read.Items {
					printRow(out, t, now, e.loc())
				}
				fmt.Fprintf(out, "%d of %d entries would be imported\n", len(read.Items), read.Total)
				return nil
			}

			var progress func()
			if !quiet && len(read.Items) > 0 {
				bar = progressbar.NewOptions(len(read.Items),
					progressbar.OptionSetDescription("Saving"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				progress = func() { bar.Add(1) }
			}
			saved := e.svc.CreateAll(ctx, read.Items, e.zone, progress)
			for _, ie := range saved.Errors {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", ie.Error())
			}
			log.Info("import finished", "file", args[0], "read", read.Total, "saved", len(saved.Items))
			fmt.Fprintf(out, "Imported %d of %d entries from %s\n", len(saved.Items), read.Total, args[0])
			if len(saved.Items) == 0 && (read.HasErrors() || saved.HasErrors()) {
				return fmt.Errorf("nothing imported from %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the file and print the tasks without saving")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide progress bars")
	return cmd
}

func NewExportCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "export <file.ics>",
		Short: "Export tasks as iCalendar VTODOs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := e.svc.List(cmd.Context(), store.Filter{IncludeCompleted: all})
			if err != nil {
				return err
			}
			if err := ics.NewWriter().WriteFile(cmd.Context(), list, args[0], e.loc()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(list), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	return cmd
}
