package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/mutate"
	"taskboard/internal/store"
)

// boardEntity is the entity id of events that touch the whole board.
const boardEntity = "board"

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the board with a legacy JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			b, rep, err := s.ImportJSON(raw)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !dryRun {
				payload := map[string]any{"tasks": rep.Tasks, "nodes": rep.Nodes, "dropped": len(rep.Dropped)}
				if err := commit(cmd.Context(), app, s, b, "board.import", boardEntity, payload); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, envelope{
				Data: rep,
				Meta: map[string]any{"dryRun": dryRun},
				text: func(w io.Writer) error {
					fmt.Fprintf(w, "Imported %d task(s) (%d including sub-tasks), %d people, %d categories\n", rep.Tasks, rep.Nodes, rep.People, rep.Categories)
					for _, d := range rep.Dropped {
						fmt.Fprintf(w, "  dropped %s %s: %s\n", d.Kind, d.Key, d.Reason)
					}
					if len(rep.ReassignedIDs) > 0 {
						fmt.Fprintf(w, "  reassigned duplicate ids: %s\n", strings.Join(rep.ReassignedIDs, ", "))
					}
					return nil
				},
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and report without saving")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newExportCmd(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as legacy JSON (tasks, people, categories)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := store.ExportJSON(b)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(outPath) == "" {
				_, err := cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := store.WriteFileAtomic(outPath, raw, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"file": outPath, "tasks": len(b.Tasks)}, nil)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newSeedCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample board (people, categories and three tasks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, s, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(b.Tasks) > 0 && !force {
				return writeErr(cmd, mutate.ConflictError{Kind: "board", Name: s.Dir, Reason: "already has tasks (use --force to replace)"})
			}
			sample := store.SampleBoard(app.Clock.Today())
			if err := commit(cmd.Context(), app, s, sample, "board.seed", boardEntity, map[string]any{"tasks": len(sample.Tasks)}); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, sample, func(w io.Writer) error { return renderTaskList(w, sample, sample.Tasks) })
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing board")
	return cmd
}

func newEventsCmd(app *App) *cobra.Command {
	var (
		limit  int
		entity string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the mutation event log (oldest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			evs, err := s.Events(cmd.Context(), entity, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, evs, func(w io.Writer) error { return renderEvents(w, evs) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return, most recent (0 = all)")
	cmd.Flags().StringVar(&entity, "entity", "", "Only events for this task id or registry name")
	return cmd
}
