package notecmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/cliui"
)

func newListCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := newClient(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			notes, err := cl.ListNotes(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(w, cliui.DimStyle.Render("No notes yet."))
				return nil
			}

			width := cliui.Width(os.Stdout, 100)
			for _, note := range notes {
				id := fmt.Sprintf("#%-4d", note.ID)
				created := note.CreatedAt.Local().Format("2006-01-02 15:04")
				textWidth := max(width-len(id)-len(created)-4, 20)

				fmt.Fprintf(w, "%s  %s  %s\n",
					cliui.NameStyle.Render(id),
					cliui.DimStyle.Render(created),
					cliui.Truncate(note.Text, textWidth),
				)
			}
			return nil
		},
	}
}
