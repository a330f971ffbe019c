package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/store"
)

// newRegistryCmd builds "people" or "categories"; both share one set of
// subcommands.
func newRegistryCmd(app *App, kind mutate.RegistryKind) *cobra.Command {
	use, short := "people", "Manage people (assignees)"
	if kind == mutate.Categories {
		use, short = "categories", "Manage categories"
	}
	cmd := &cobra.Command{Use: use, Short: short}

	var color string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryMutation(cmd, app, kind, "add", func(b *store.Board) (mutate.RegistryResult, error) {
				return mutate.AddEntry(b, kind, args[0], color)
			})
		},
	}
	addCmd.Flags().StringVar(&color, "color", "", "Display color (#rrggbb; default: random)")

	colorCmd := &cobra.Command{
		Use:   "color <name> <color>",
		Short: "Change the display color of a " + string(kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryMutation(cmd, app, kind, "color", func(b *store.Board) (mutate.RegistryResult, error) {
				return mutate.SetColor(b, kind, args[0], args[1])
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a " + string(kind) + " that no active task uses",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryMutation(cmd, app, kind, "delete", func(b *store.Board) (mutate.RegistryResult, error) {
				return mutate.DeleteEntry(b, kind, args[0])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			reg := b.People
			if kind == mutate.Categories {
				reg = b.Categories
			}
			entries := registryEntries(b, kind, reg)
			return writeData(cmd, app, entries, func(w io.Writer) error { return renderRegistry(w, entries) })
		},
	}

	cmd.AddCommand(addCmd, listCmd, colorCmd, rmCmd)
	return cmd
}

func registryEntries(b *store.Board, kind mutate.RegistryKind, reg model.Registry) []registryEntry {
	out := make([]registryEntry, 0, len(reg))
	for _, name := range reg.Names() {
		out = append(out, registryEntry{Name: name, Color: reg.Color(name), InUse: len(mutate.InUse(b, kind, name))})
	}
	return out
}

func runRegistryMutation(cmd *cobra.Command, app *App, kind mutate.RegistryKind, verb string, fn func(b *store.Board) (mutate.RegistryResult, error)) error {
	b, s, err := loadBoard(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	res, err := fn(b)
	if err != nil {
		return writeErr(cmd, err)
	}
	if res.Changed {
		if err := commit(cmd.Context(), app, s, b, string(kind)+"."+verb, res.Name, res.EventPayload); err != nil {
			return writeErr(cmd, err)
		}
	}
	data := map[string]any{"kind": string(res.Kind), "name": res.Name, "color": res.Color}
	return writeOut(cmd, app, envelope{
		Data: data,
		Meta: map[string]any{"changed": res.Changed},
		text: func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s %s: %s %s\n", res.Kind, verb, res.Name, res.Color)
			return err
		},
	})
}
