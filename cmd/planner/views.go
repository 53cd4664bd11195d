package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

func newDueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "due [date]",
		Short: "Show every task with an occurrence on a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			date, err := a.parseDate(ref)
			if err != nil {
				return err
			}

			entries, err := a.svc.DueOn(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", date, date.Weekday())
			return printEntries(cmd, entries)
		},
	}
}

// indicatorMarks are the one-letter calendar markers per class.
var indicatorMarks = map[domain.Indicator]string{
	domain.IndicatorCombined:  "!",
	domain.IndicatorImportant: "I",
	domain.IndicatorUrgent:    "U",
	domain.IndicatorNone:      ".",
}

func newCalendarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month with per-day task indicators",
		Long: `Show a month with one marker per task occurrence:
  !  important and urgent
  I  important
  U  urgent
  .  no priority`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Date(a.now().Year(), a.now().Month(), 1, 0, 0, 0, 0, time.UTC)
			if len(args) == 1 {
				t, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("%w: month %q", domain.ErrInvalidFilter, args[0])
				}
				month = t
			}

			m, err := a.svc.CalendarMonth(cmd.Context(), month.Year(), month.Month())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d (horizon %s)\n", month.Month(), month.Year(), a.svc.Horizon())
			w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
			fmt.Fprintln(w, "Su\tMo\tTu\tWe\tTh\tFr\tSa\t")

			first := calendar.New(month.Year(), month.Month(), 1)
			fmt.Fprint(w, strings.Repeat("\t", int(first.Weekday())))
			for day := range calendar.DaysIn(month.Year(), month.Month()) {
				d := first.AddDays(day)
				cell := fmt.Sprintf("%2d", d.Day())
				for _, class := range m.On(d) {
					cell += indicatorMarks[class]
				}
				fmt.Fprint(w, cell+"\t")
				if d.Weekday() == time.Saturday {
					fmt.Fprintln(w)
				}
			}
			fmt.Fprintln(w)
			return w.Flush()
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show overdue and upcoming one-off tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.svc.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if d.Empty() {
				fmt.Fprintln(out, "Nothing overdue or due in the next 48 hours.")
				return nil
			}
			printSection(cmd, "Overdue", d.Overdue)
			printSection(cmd, "Upcoming", d.Upcoming)
			return nil
		},
	}
}

func printSection(cmd *cobra.Command, title string, tasks []domain.Task) {
	if len(tasks) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d)\n", title, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(out, "  %s  %s  %s\n", shortID(t.ID), t.Deadline, t.Text)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a task as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			body, err := a.svc.ExportICS(cmd.Context(), task.ID)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
