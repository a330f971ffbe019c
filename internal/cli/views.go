package cli

import (
	"io"

	"github.com/spf13/cobra"

	"taskboard/internal/view"
)

func newBoardCmd(app *App) *cobra.Command {
	var (
		c      view.Criteria
		closed string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Kanban board: status columns plus due today / this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			crit, ord, err := criteriaFrom(app, c, closed, order)
			if err != nil {
				return writeErr(cmd, err)
			}
			v := view.Board(b.Tasks, crit, ord, app.Clock.Now(), app.Clock.Today())
			return writeData(cmd, app, v, func(w io.Writer) error { return renderBoard(w, b, v) })
		},
	}
	addCriteriaFlags(cmd, &c, &closed, &order)
	return cmd
}

func newDueCmd(app *App, use string) *cobra.Command {
	short, title := "Tasks due today", "Due today"
	if use == "week" {
		short, title = "Tasks due within the next seven days", "Due this week"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			active := view.Active(b.Tasks)
			entries := view.DueToday(active, app.Clock.Today())
			if use == "week" {
				entries = view.DueThisWeek(active, app.Clock.Today())
			}
			return writeData(cmd, app, entries, func(w io.Writer) error { return renderDue(w, b, title, entries) })
		},
	}
}

func newOverdueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Unfinished tasks whose due date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := view.Overdue(view.Active(b.Tasks), app.Clock.Today())
			return writeData(cmd, app, tasks, func(w io.Writer) error { return renderTaskList(w, b, tasks) })
		},
	}
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Counts, urgent tasks and upcoming deadlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			v := view.Dashboard(b.Tasks, app.Clock.Today())
			return writeData(cmd, app, v, func(w io.Writer) error { return renderDashboard(w, b, v) })
		},
	}
}

func newArchiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archived tasks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := view.Archived(b.Tasks)
			return writeData(cmd, app, tasks, func(w io.Writer) error { return renderTaskList(w, b, tasks) })
		},
	})
	return cmd
}
