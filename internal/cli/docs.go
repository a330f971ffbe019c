package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskboard/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				return writeData(cmd, app, topics, func(w io.Writer) error {
					for _, t := range topics {
						if _, err := fmt.Fprintf(w, "%-10s %s\n", t.Name, t.Title); err != nil {
							return err
						}
					}
					return nil
				})
			}

			body, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `taskboard docs` to list topics)", args[0]))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeData(cmd, app, map[string]any{"topic": args[0], "markdown": body}, func(w io.Writer) error {
				_, err := io.WriteString(w, renderMarkdown(body))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	return cmd
}
