package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/store"
	"taskboard/internal/view"
)

func newTasksLogCmd(app *App) *cobra.Command {
	var (
		message string
		chaser  string
		as      string
	)
	cmd := &cobra.Command{
		Use:   "log <task-id>",
		Short: "Show a task's activity log, or add an update with --message/--chaser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" && strings.TrimSpace(chaser) == "" {
				b, _, err := loadBoard(cmd, app)
				if err != nil {
					return writeErr(cmd, err)
				}
				t, ok := b.FindTask(strings.TrimSpace(args[0]))
				if !ok {
					return writeErr(cmd, mutate.NotFoundError{Kind: "task", ID: args[0]})
				}
				lines := view.LogSummary(t)
				return writeData(cmd, app, lines, func(w io.Writer) error {
					for _, l := range lines {
						who := ""
						if l.Assignee != nil {
							who = " (" + *l.Assignee + ")"
						}
						if _, err := fmt.Fprintf(w, "%s  %s%s  %s\n", l.Timestamp.Local().Format("2006-01-02 15:04"), l.TaskName, who, l.Message); err != nil {
							return err
						}
					}
					return nil
				})
			}
			if message != "" && chaser != "" {
				return writeErr(cmd, mutate.ValidationError{Field: "message", Reason: "use either --message or --chaser"})
			}
			msg := message
			if chaser != "" {
				m, err := mutate.ChaserMessage(chaser)
				if err != nil {
					return writeErr(cmd, err)
				}
				msg = m
			}
			var by *string
			if cmd.Flags().Changed("as") {
				by = &as
			}
			return runTaskMutation(cmd, app, "task.log", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.AppendLog(b, env, args[0], msg, by)
			})
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "Update text to record")
	cmd.Flags().StringVar(&chaser, "chaser", "", "Record a chaser preset (email|letter|meeting)")
	cmd.Flags().StringVar(&as, "as", "", "Attribute the update to this person (default: the task's assignee)")
	return cmd
}

func newTasksLinksCmd(app *App) *cobra.Command {
	var (
		add    string
		remove int
	)
	cmd := &cobra.Command{
		Use:   "links <task-id>",
		Short: "List a task's links, or change them with --add/--remove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()
			switch {
			case fl.Changed("add") && fl.Changed("remove"):
				return writeErr(cmd, mutate.ValidationError{Field: "links", Reason: "use either --add or --remove"})
			case fl.Changed("add"):
				return runTaskMutation(cmd, app, "task.link", func(b *store.Board, _ mutate.Env) (mutate.TaskResult, error) {
					return mutate.AddLink(b, args[0], parseLink(add))
				})
			case fl.Changed("remove"):
				return runTaskMutation(cmd, app, "task.unlink", func(b *store.Board, _ mutate.Env) (mutate.TaskResult, error) {
					return mutate.RemoveLink(b, args[0], remove)
				})
			}
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := b.FindTask(strings.TrimSpace(args[0]))
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "task", ID: args[0]})
			}
			links := t.Links
			if links == nil {
				links = []model.Link{}
			}
			return writeData(cmd, app, links, func(w io.Writer) error {
				for i, l := range links {
					if _, err := fmt.Fprintf(w, "[%d] %s %s\n", i, l.Name, l.URL); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&add, "add", "", "Add a link as name=url")
	cmd.Flags().IntVar(&remove, "remove", 0, "Remove the link at this index")
	return cmd
}

func newSubtasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtasks",
		Short: "Manage sub-tasks",
	}

	var (
		in  mutate.SubtaskInput
		due string
	)
	addCmd := &cobra.Command{
		Use:   "add <parent-id>",
		Short: "Add a sub-task under any task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(due) != "" {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.DueDate = d
			}
			return runTaskMutation(cmd, app, "subtask.create", func(b *store.Board, env mutate.Env) (mutate.TaskResult, error) {
				return mutate.AddSubtask(b, env, args[0], in)
			})
		},
	}
	addCmd.Flags().StringVar(&in.Name, "name", "", "Sub-task name (required)")
	addCmd.Flags().StringVar(&in.Description, "description", "", "Sub-task description")
	addCmd.Flags().StringVar(&in.Assignee, "assignee", "", "Assignee (required, registered person)")
	addCmd.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD (required)")

	cmd.AddCommand(addCmd)
	return cmd
}

