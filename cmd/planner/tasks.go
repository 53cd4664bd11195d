package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arsennaibaho/Tugas-IMK/internal/agenda"
	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
)

// taskFlags are the editable task fields shared by add and edit.
type taskFlags struct {
	deadline  string
	important bool
	urgent    bool
	repeat    string
	days      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.deadline, "deadline", "d", "", "deadline as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&f.important, "important", false, "flag the task as important")
	cmd.Flags().BoolVar(&f.urgent, "urgent", false, "flag the task as urgent")
	cmd.Flags().StringVarP(&f.repeat, "repeat", "r", "", "recurrence: none, daily, weekly, monthly or custom")
	cmd.Flags().StringVar(&f.days, "days", "", "weekdays for custom recurrence, e.g. mon,wed,fri or 1,3,5")
}

func (f *taskFlags) priorities() []domain.Priority {
	var p []domain.Priority
	if f.important {
		p = append(p, domain.PriorityImportant)
	}
	if f.urgent {
		p = append(p, domain.PriorityUrgent)
	}
	return p
}

func (f *taskFlags) repetition() (domain.Repetition, error) {
	days, err := parseDays(f.days)
	if err != nil {
		return domain.Repetition{}, err
	}
	typ := f.repeat
	if typ == "" && len(days) > 0 {
		typ = string(domain.RepetitionCustom)
	}
	return domain.NewRepetition(typ, days)
}

// parseDays accepts weekday names, abbreviations or indices (Sunday = 0).
func parseDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if i, err := strconv.Atoi(part); err == nil {
			out = append(out, i)
			continue
		}
		d, err := domain.ParseWeekdayName(part)
		if err != nil {
			return nil, err
		}
		out = append(out, int(d))
	}
	return out, nil
}

func (a *app) parseDate(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Today(a.now()), nil
	}
	return calendar.Parse(s)
}

func newAddCmd(a *app) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Example: `  planner add "Pay rent" --deadline 2024-07-01 --urgent
  planner add "Gym" --repeat custom --days mon,wed,fri`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline, err := a.parseDate(f.deadline)
			if err != nil {
				return err
			}
			rule, err := f.repetition()
			if err != nil {
				return err
			}

			task, err := a.svc.AddTask(cmd.Context(), planner.TaskInput{
				Text:       strings.Join(args, " "),
				Deadline:   deadline,
				Priority:   f.priorities(),
				Repetition: rule,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q due %s\n", shortID(task.ID), task.Text, task.Deadline)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		f    taskFlags
		text string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			input := planner.TaskInput{
				Text:       task.Text,
				Deadline:   task.Deadline,
				Priority:   task.Priority,
				Repetition: task.Repetition,
			}
			flags := cmd.Flags()
			if flags.Changed("text") {
				input.Text = text
			}
			if flags.Changed("deadline") {
				if input.Deadline, err = calendar.Parse(f.deadline); err != nil {
					return err
				}
			}
			if flags.Changed("important") || flags.Changed("urgent") {
				prio := domain.PrioritySet(task.Priority)
				if flags.Changed("important") && prio.Has(domain.PriorityImportant) != f.important {
					prio = prio.Toggle(domain.PriorityImportant)
				}
				if flags.Changed("urgent") && prio.Has(domain.PriorityUrgent) != f.urgent {
					prio = prio.Toggle(domain.PriorityUrgent)
				}
				input.Priority = prio
			}
			if flags.Changed("repeat") || flags.Changed("days") {
				if input.Repetition, err = f.repetition(); err != nil {
					return err
				}
			}

			updated, err := a.svc.UpdateTask(cmd.Context(), task.ID, input, calendar.Date{}, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %q\n", shortID(updated.ID), updated.Text)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&text, "text", "t", "", "new task text")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var status, priority string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks sorted by deadline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf, err := domain.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			pf, err := domain.ParsePriorityFilter(priority)
			if err != nil {
				return err
			}

			entries, err := a.svc.ListTasks(cmd.Context(), agenda.Options{Status: sf, Priority: pf})
			if err != nil {
				return err
			}
			return printEntries(cmd, entries)
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, active or completed")
	cmd.Flags().StringVar(&priority, "priority", "all", "all, important, urgent, combined or none")
	return cmd
}

func printEntries(cmd *cobra.Command, entries []agenda.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tDONE\tCLASS\tREPEAT\tTEXT")
	for _, e := range entries {
		done := " "
		if e.Completed {
			done = "x"
		}
		text := e.Task.Text
		if e.Note != "" {
			text += " (" + e.Note + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t[%s]\t%s\t%s\t%s\n",
			shortID(e.Task.ID), e.Date, done, e.Task.Indicator(),
			strings.ToLower(string(e.Task.Repetition.Kind())), text)
	}
	return w.Flush()
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id> [date]",
		Short: "Toggle completion of an occurrence",
		Long: `Toggle completion of an occurrence. Without a date, a recurring task is
toggled for today and a one-off task for its deadline.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			date := agenda.RelevantDate(*task, calendar.Today(a.now()))
			if len(args) == 2 {
				if date, err = calendar.Parse(args[1]); err != nil {
					return err
				}
			}

			updated, err := a.svc.ToggleCompletion(cmd.Context(), task.ID, date)
			if err != nil {
				return err
			}
			state := "open"
			if updated.IsCompleted(date) {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q on %s is %s\n", updated.Text, date, state)
			return nil
		},
	}
}

func newNoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <date> [text]",
		Short: "Set the note on an occurrence; no text clears it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			date, err := calendar.Parse(args[1])
			if err != nil {
				return err
			}

			note := strings.Join(args[2:], " ")
			if _, err := a.svc.SetNote(cmd.Context(), task.ID, date, note); err != nil {
				return err
			}
			if strings.TrimSpace(note) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared note on %s\n", date)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Noted %s\n", date)
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteTask(cmd.Context(), task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Text)
			return nil
		},
	}
}
