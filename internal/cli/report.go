package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
	"taskboard/internal/report"
	"taskboard/internal/store"
)

type reportOut struct {
	Title    string        `json:"title"`
	Markdown string        `json:"markdown"`
	Tasks    []*model.Task `json:"tasks"`
	File     string        `json:"file,omitempty"`
}

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Markdown reports",
	}

	var (
		people []string
		all    bool
		outAs  string
	)
	assigneeCmd := &cobra.Command{
		Use:   "assignee",
		Short: "Tasks involving the selected people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, app, report.AssigneeTitle, outAs, func(b *store.Board) ([]*model.Task, error) {
				sel := people
				if all {
					sel = b.People.Names()
				}
				return report.ByAssignee(b.Tasks, sel)
			})
		},
	}
	assigneeCmd.Flags().StringSliceVar(&people, "person", nil, "Person to include (repeatable)")
	assigneeCmd.Flags().BoolVar(&all, "all", false, "Include every registered person")
	assigneeCmd.Flags().StringVarP(&outAs, "out", "o", "", "Also write the markdown to this file")

	var overdueOut string
	overdueCmd := &cobra.Command{
		Use:   "overdue",
		Short: "Unfinished tasks past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, app, report.OverdueTitle, overdueOut, func(b *store.Board) ([]*model.Task, error) {
				return report.Overdue(b.Tasks, app.Clock.Today()), nil
			})
		},
	}
	overdueCmd.Flags().StringVarP(&overdueOut, "out", "o", "", "Also write the markdown to this file")

	cmd.AddCommand(assigneeCmd, overdueCmd)
	return cmd
}

func runReport(cmd *cobra.Command, app *App, title, outPath string, sel func(b *store.Board) ([]*model.Task, error)) error {
	b, _, err := loadBoard(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	tasks, err := sel(b)
	if err != nil {
		return writeErr(cmd, err)
	}
	md := report.Markdown(title, tasks, app.Clock.Today())
	out := reportOut{Title: title, Markdown: md, Tasks: tasks}
	if p := strings.TrimSpace(outPath); p != "" {
		if err := store.WriteFileAtomic(p, []byte(md), 0o644); err != nil {
			return writeErr(cmd, fmt.Errorf("write report: %w", err))
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out.File = p
		app.Logger.Info("report written", "file", p, "tasks", len(tasks))
	}
	return writeData(cmd, app, out, func(w io.Writer) error {
		_, err := io.WriteString(w, renderMarkdown(md))
		return err
	})
}
