// Package askcmder provides the ask command for asking a running ragnotes
// server a question.
package askcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/api"
	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/client"
	"github.com/papercomputeco/ragnotes/pkg/config"
)

type askCommander struct {
	apiTarget   string
	showContext bool
	raw         bool
	progress    bool
}

const askLongDesc string = `Ask a running ragnotes server a question.

The question is answered with the most similar stored note as context when it
is similar enough. With no question the server asks its default question.

The answer is rendered as markdown when stdout is a terminal. Use --raw for
plain text and --context to also print the note used as context.

Examples:
  ragnotes ask "what is the wifi password?"
  ragnotes ask --context where did I park
  ragnotes ask "summarize my todo list" --api-target http://remote:8787`

const askShortDesc string = "Ask a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadAPITarget(cmd, &cmder.apiTarget)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var progress io.Writer
			if cmder.progress {
				progress = cmd.ErrOrStderr()
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), progress, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVarP(&cmder.showContext, "context", "c", false, "Print the note context used for the answer")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")
	cmd.Flags().BoolVar(&cmder.progress, "progress", cliui.Interactive(os.Stderr), "Show a spinner on stderr while waiting for the answer")

	return cmd
}

// loadAPITarget fills target from the config file unless --api-target was
// given.
func loadAPITarget(cmd *cobra.Command, target *string) error {
	if cmd.Flags().Changed("api-target") {
		return nil
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	*target = cfg.Client.APITarget
	return nil
}

// run asks the server and prints the answer to w. A non-nil progress writer
// gets a spinner while the request is in flight.
func (c *askCommander) run(ctx context.Context, w, progress io.Writer, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cl, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	var answer *api.QueryResponse
	ask := func() error {
		answer, err = cl.Ask(ctx, question)
		return err
	}
	if progress != nil {
		err = cliui.Step(progress, "Asking "+c.apiTarget, ask)
	} else {
		err = ask()
	}
	if err != nil {
		return err
	}

	text := answer.Answer
	if !c.raw && w == os.Stdout {
		text = cliui.RenderFor(os.Stdout, text)
	}
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))

	if c.showContext {
		fmt.Fprintln(w)
		if answer.Context == "" {
			fmt.Fprintln(w, cliui.DimStyle.Render("No note was similar enough to use as context."))
		} else {
			fmt.Fprintf(w, "%s %s\n%s\n",
				cliui.KeyStyle.Render("Context"),
				cliui.DimStyle.Render(fmt.Sprintf("(score %.3f, notes %v)", answer.Score, answer.NoteIDs)),
				answer.Context,
			)
		}
	}

	return nil
}
