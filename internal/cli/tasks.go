package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/statusutil"
	"taskboard/internal/store"
	"taskboard/internal/view"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Create, inspect and change tasks",
	}
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksSetStatusCmd(app, "close", model.StatusClosed, "Mark a task Closed"))
	cmd.AddCommand(newTasksSetStatusCmd(app, "reopen", model.StatusOpen, "Move a task back to Open"))
	cmd.AddCommand(newTasksLifecycleCmd(app, "archive", "Archive a task (hidden from the board)", mutate.Archive))
	cmd.AddCommand(newTasksLifecycleCmd(app, "restore", "Restore an archived task", mutate.Restore))
	cmd.AddCommand(newTasksDeleteCmd(app, "delete", "Delete a task and its sub-tasks", mutate.Delete))
	cmd.AddCommand(newTasksDeleteCmd(app, "purge", "Permanently delete an archived task", mutate.Purge))
	cmd.AddCommand(newTasksLogCmd(app))
	cmd.AddCommand(newTasksLinksCmd(app))
	cmd.AddCommand(newSubtasksCmd(app))
	return cmd
}

// runTaskMutation loads the board, applies fn and, when fn changed
// anything, saves the board and records an event of type typ.
func runTaskMutation(cmd *cobra.Command, app *App, typ string, fn func(b *store.Board, env mutate.Env) (mutate.TaskResult, error)) error {
	b, s, err := loadBoard(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	res, err := fn(b, app.env())
	if err != nil {
		return writeErr(cmd, err)
	}
	if res.Changed {
		if err := commit(cmd.Context(), app, s, b, typ, res.Task.ID, res.EventPayload); err != nil {
			return writeErr(cmd, err)
		}
	}
	rolled := res.Rolled
	if rolled == nil {
		rolled = []string{}
	}
	return writeOut(cmd, app, envelope{
		Data: res.Task,
		Meta: map[string]any{"changed": res.Changed, "rolled": rolled},
		text: func(w io.Writer) error { return renderTask(w, b, res.Task) },
	})
}

func parseDue(s string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return model.Date{}, mutate.ValidationError{Field: "due", Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", s)}
	}
	return d, nil
}

// parseLink accepts "name=url" or a bare url, which then names itself.
func parseLink(s string) model.Link {
	if name, url, ok := strings.Cut(s, "="); ok && !strings.Contains(name, "://") {
		return model.Link{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)}
	}
	return model.Link{Name: strings.TrimSpace(s), URL: strings.TrimSpace(s)}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		in       mutate.CreateInput
		due      string
		status   string
		progress int
		links    []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a top-level task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(due) != "" {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.DueDate = d
			}
			if strings.TrimSpace(status) != "" {
				st, err := statusutil.Parse(status)
				if err != nil {
					return writeErr(cmd, mutate.ValidationError{Field: "status", Reason: err.Error()})
				}
				in.Status = st
			}
			if cmd.Flags().Changed("progress") {
				p := progress
				in.Progress = &p
			}
			for _, l := range links {
				in.Links = append(in.Links, parseLink(l))
			}
			return runTaskMutation(cmd, app, "task.create", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.CreateTask(b, env, in)
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Task name (default: Untitled)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "Assignee (must be a registered person)")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category (must be registered)")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (open|in-progress|closed)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percent (0-100)")
	cmd.Flags().BoolVar(&in.IsUrgent, "urgent", false, "Mark as urgent")
	cmd.Flags().StringArrayVar(&links, "link", nil, "Link as name=url (repeatable)")
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		c        view.Criteria
		closed   string
		order    string
		archived bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List top-level tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if archived {
				tasks := view.Archived(b.Tasks)
				return writeData(cmd, app, tasks, func(w io.Writer) error { return renderTaskList(w, b, tasks) })
			}
			crit, ord, err := criteriaFrom(app, c, closed, order)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := view.Sort(view.Filter(view.Active(b.Tasks), crit, app.Clock.Now()), ord)
			return writeData(cmd, app, tasks, func(w io.Writer) error { return renderTaskList(w, b, tasks) })
		},
	}
	addCriteriaFlags(cmd, &c, &closed, &order)
	cmd.Flags().BoolVar(&archived, "archived", false, "List archived tasks instead")
	return cmd
}

func addCriteriaFlags(cmd *cobra.Command, c *view.Criteria, closed, order *string) {
	cmd.Flags().StringVar(&c.Search, "search", "", "Match name/description (overrides other filters)")
	cmd.Flags().StringVar(&c.Assignee, "assignee", "", "Only tasks with this person anywhere in their subtree")
	cmd.Flags().StringVar(&c.Category, "category", "", "Only tasks in this category")
	cmd.Flags().StringVar(closed, "closed-window", "", "Show Closed tasks closed within N days, or \"all\"")
	cmd.Flags().StringVar(order, "order", "", "Sort by due date (oldest|newest)")
}

// criteriaFrom fills unset flags from config.
func criteriaFrom(app *App, c view.Criteria, closed, order string) (view.Criteria, view.Order, error) {
	if strings.TrimSpace(closed) == "" {
		c.ClosedWindow = app.Config.ClosedWindow()
	} else {
		w, err := view.ParseClosedWindow(closed)
		if err != nil {
			return c, "", mutate.ValidationError{Field: "closed-window", Reason: err.Error()}
		}
		c.ClosedWindow = w
	}
	if strings.TrimSpace(order) == "" {
		order = app.Config.SortOrder
	}
	o, err := view.ParseOrder(order)
	if err != nil {
		return c, "", mutate.ValidationError{Field: "order", Reason: err.Error()}
	}
	return c, o, nil
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its sub-tasks, links and log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			t, ok := b.FindTask(id)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "task", ID: id})
			}
			path := b.PathTo(id)
			parents := make([]string, 0, len(path)-1)
			for _, p := range path[:len(path)-1] {
				parents = append(parents, p.ID)
			}
			return writeOut(cmd, app, envelope{
				Data: t,
				Meta: map[string]any{"path": parents, "log": view.LogSummary(t)},
				text: func(w io.Writer) error { return renderTask(w, b, t) },
			})
		},
	}
}

func newTasksEditCmd(app *App) *cobra.Command {
	var (
		name, description, due, assignee, category string
		urgent                                     bool
	)
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit task fields (only the flags given are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p mutate.Patch
			fl := cmd.Flags()
			if fl.Changed("name") {
				p.Name = &name
			}
			if fl.Changed("description") {
				p.Description = &description
			}
			if fl.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.DueDate = &d
			}
			if fl.Changed("assignee") {
				p.Assignee = &assignee
			}
			if fl.Changed("category") {
				p.Category = &category
			}
			if fl.Changed("urgent") {
				p.IsUrgent = &urgent
			}
			return runTaskMutation(cmd, app, "task.update", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.EditTask(b, env, args[0], p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date YYYY-MM-DD")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee (empty string unassigns)")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().BoolVar(&urgent, "urgent", false, "Set or clear (--urgent=false) the urgent flag")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	var progress int
	cmd := &cobra.Command{
		Use:   "status <task-id> <open|in-progress|closed>",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.Parse(args[1])
			if err != nil {
				return writeErr(cmd, mutate.ValidationError{Field: "status", Reason: err.Error()})
			}
			var p *int
			if cmd.Flags().Changed("progress") {
				p = &progress
			}
			return runTaskMutation(cmd, app, "task.status", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.SetStatus(b, env, args[0], st, p)
			})
		},
	}
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percent (0-100, not allowed for closed)")
	return cmd
}

func newTasksSetStatusCmd(app *App, use string, to model.Status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskMutation(cmd, app, "task.status", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.SetStatus(b, env, args[0], to, nil)
			})
		},
	}
}

func newTasksLifecycleCmd(app *App, use, short string, fn func(*store.Board, mutate.Env, string) (mutate.TaskResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskMutation(cmd, app, "task."+use, func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return fn(b, env, args[0])
			})
		},
	}
}

func newTasksDeleteCmd(app *App, use, short string, fn func(*store.Board, mutate.Env, string) (mutate.DeleteResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, s, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := fn(b, app.env(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, s, b, "task."+use, res.ID, res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			rolled := res.Rolled
			if rolled == nil {
				rolled = []string{}
			}
			data := map[string]any{"id": res.ID, "removed": res.Removed, "rolled": rolled}
			return writeData(cmd, app, data, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted %s (%d task(s) removed)\n", res.ID, res.Removed)
				return err
			})
		},
	}
}
