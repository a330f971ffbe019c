package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskboard/internal/clock"
	"taskboard/internal/config"
	"taskboard/internal/format"
	"taskboard/internal/logging"
	"taskboard/internal/mutate"
	"taskboard/internal/store"
)

type App struct {
	Dir        string
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogLevel   string

	Clock  clock.Clock
	Config config.Config
	Logger *log.Logger

	format format.Format
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{Clock: clock.System{}})
}

func newRootCmd(app *App) *cobra.Command {
	if app.Clock == nil {
		app.Clock = clock.System{}
	}

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Local task board with sub-tasks, due-date rollup and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Kanban board as text
  taskboard board --format text

  # Create a task and close it
  taskboard tasks create --name "Ship it" --assignee "Alice Johnson" --category Backend
  taskboard tasks close task-abc123

  # Direct task lookup (shortcut for: taskboard tasks show <task-id>)
  taskboard task-abc123
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Path to store dir (default: discovered .taskboard, or $TASKBOARD_DIR)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.toml (default: ~/.taskboard/config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Diagnostic log level (debug|info|warn|error)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newRegistryCmd(app, mutate.People))
	cmd.AddCommand(newRegistryCmd(app, mutate.Categories))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newDueCmd(app, "today"))
	cmd.AddCommand(newDueCmd(app, "week"))
	cmd.AddCommand(newOverdueCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newArchiveCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup layers the config file, then the environment, then flags.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg.ApplyEnv()
	if app.Dir != "" {
		cfg.DataDir = app.Dir
	}
	if app.Format != "" {
		cfg.Format = app.Format
	}
	if app.LogLevel != "" {
		cfg.LogLevel = app.LogLevel
	}
	app.Config = cfg

	f, err := format.Parse(cfg.Format)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.format = f

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Logger = logger
	if f == format.Text {
		applyColorProfilePreference()
	}
	return nil
}

func (app *App) store() (store.Store, error) {
	dir := strings.TrimSpace(app.Config.DataDir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
	}
	return store.Store{Dir: dir, Logger: app.Logger, Clock: app.Clock}, nil
}

func (app *App) env() mutate.Env {
	return mutate.Env{Clock: app.Clock, Policy: app.Config.RollupPolicy()}
}

func loadBoard(cmd *cobra.Command, app *App) (*store.Board, store.Store, error) {
	s, err := app.store()
	if err != nil {
		return nil, store.Store{}, err
	}
	b, err := s.Load(cmd.Context())
	if err != nil {
		return nil, s, err
	}
	return b, s, nil
}

// commit saves b and records the mutation's event in the same transaction.
func commit(ctx context.Context, app *App, s store.Store, b *store.Board, typ, entityID string, payload map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ev := store.PendingEvent{Type: typ, EntityID: entityID, Payload: payload}
	if err := s.Save(ctx, b, ev); err != nil {
		return err
	}
	app.Logger.Debug("mutation saved", "type", typ, "entity", entityID)
	return nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.format, app.PrettyJSON)
}

// writeData wraps data in the {"data": ...} envelope; text renders it for
// --format text.
func writeData(cmd *cobra.Command, app *App, data any, text func(w io.Writer) error) error {
	return writeOut(cmd, app, envelope{Data: data, text: text})
}

// reportedError marks an error already printed to stderr.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func writeErr(cmd *cobra.Command, err error) error {
	if Reported(err) {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err}
}

// Reported reports whether err was already written to stderr.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var nf mutate.NotFoundError
	var ve mutate.ValidationError
	var ce mutate.ConflictError
	var md store.MalformedDataError
	switch {
	case errors.As(err, &nf):
		return 3
	case errors.As(err, &ve):
		return 2
	case errors.As(err, &ce):
		return 4
	case errors.As(err, &md):
		return 5
	default:
		return 1
	}
}

func envOr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}
