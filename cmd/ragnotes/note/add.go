package notecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/cliui"
)

const addLongDesc string = `Store a note and index it for retrieval.

The note text is the joined arguments, or stdin when the only argument is "-".

Examples:
  ragnotes note add "the wifi password is hunter2"
  ragnotes note add remember to water the plants
  cat meeting.md | ragnotes note add -`

func newAddCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Store and index a note",
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := noteText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cl, err := newClient(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			result, err := cl.AddNote(ctx, text)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added note %s %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(fmt.Sprintf("#%d", result.ID)),
				cliui.DimStyle.Render(fmt.Sprintf("(%d embedding indexed)", result.Inserted.Count)),
			)
			return nil
		},
	}
}

func noteText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		args = []string{string(data)}
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", errors.New("note text cannot be empty")
	}
	return text, nil
}
