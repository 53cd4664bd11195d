// Package main implements the planner CLI, which works directly against the
// configured task storage.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/config"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/storage"
)

var version = "dev"

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once storage is open.
type app struct {
	now     func() time.Time
	backend *storage.Backend
	svc     *planner.Service
	verbose bool
}

func newRootCmd(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Personal task planner with recurring tasks",
		Long: `planner manages personal tasks with deadlines, priority flags and
recurrence rules, and shows them as a calendar, a day view and a dashboard
of overdue and upcoming tasks.

Storage is selected with PLANNER_STORAGE_BACKEND (fs, sqlite, postgres, gcs).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.backend == nil {
				return nil
			}
			return a.backend.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log storage activity to stderr")

	root.AddCommand(
		newAddCmd(a),
		newEditCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newNoteCmd(a),
		newRemoveCmd(a),
		newDueCmd(a),
		newCalendarCmd(a),
		newDashboardCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, stderr io.Writer) error {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	backend, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.backend = backend
	a.svc = planner.NewService(backend, planner.Config{Now: a.now, Logger: logger})
	return nil
}

// resolve finds a task by full ID, or by a unique ID prefix or short ID.
func (a *app) resolve(ctx context.Context, ref string) (*domain.Task, error) {
	if task, err := a.svc.GetTask(ctx, ref); err == nil {
		return task, nil
	}

	tasks, err := a.backend.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	var match *domain.Task
	for i := range tasks {
		id := tasks[i].ID
		if !strings.HasPrefix(id, ref) && !strings.HasSuffix(id, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("task reference %q is ambiguous", ref)
		}
		match = &tasks[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	}
	return match, nil
}

// shortID is the ID suffix shown in listings. UUIDv7 prefixes are
// timestamps, so tasks created together share them.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
