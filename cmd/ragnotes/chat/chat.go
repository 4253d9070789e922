// Package chatcmder provides the chat command, an interactive question loop
// against a running ragnotes server.
package chatcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/api"
	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/client"
	"github.com/papercomputeco/ragnotes/pkg/config"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("ragnotes> ")
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

type chatCommander struct {
	apiTarget   string
	showContext bool
}

const chatLongDesc string = `Start an interactive question loop against a running ragnotes server.

Each question is answered independently, using the most similar note as
context. Type /exit or press Ctrl+C to quit.

Examples:
  ragnotes chat
  ragnotes chat --context --api-target http://remote:8787`

const chatShortDesc string = "Interactive questions over your notes"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
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

			cmder.apiTarget = cfg.Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVarP(&cmder.showContext, "context", "c", false, "Show the note context used for each answer")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cl, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Server:"), cliui.NameStyle.Render(c.apiTarget))
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type a question and press Enter. /exit or Ctrl+C to quit."))

	m := newModel(ctx, cl, c.showContext)
	m.render = func(s string) string { return cliui.RenderFor(os.Stdout, s) }

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// asker is the part of the API client the loop needs.
type asker interface {
	Ask(ctx context.Context, question string) (*api.QueryResponse, error)
}

type answerMsg struct {
	answer *api.QueryResponse
	err    error
}

type model struct {
	ctx         context.Context
	asker       asker
	showContext bool
	render      func(string) string

	input   textinput.Model
	spinner spinner.Model
	waiting bool
}

func newModel(ctx context.Context, a asker, showContext bool) model {
	input := textinput.New()
	input.Prompt = userPrompt
	input.Placeholder = "ask about your notes"
	input.Focus()

	return model{
		ctx:         ctx,
		asker:       a,
		showContext: showContext,
		render:      func(s string) string { return s },
		input:       input,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit(m.input.Value())
		}

	case answerMsg:
		return m.answered(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed question. Blank input is ignored and /exit quits.
func (m model) submit(value string) (model, tea.Cmd) {
	question := strings.TrimSpace(value)
	switch {
	case m.waiting, question == "":
		return m, nil
	case question == "/exit", question == "/quit":
		return m, tea.Quit
	}

	m.input.Reset()
	m.waiting = true

	return m, tea.Batch(
		tea.Println(userPrompt+question),
		m.ask(question),
		m.spinner.Tick,
	)
}

func (m model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.asker.Ask(m.ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (m model) answered(msg answerMsg) (model, tea.Cmd) {
	m.waiting = false
	return m, tea.Println(m.transcript(msg))
}

// transcript formats an answer for printing above the input line.
func (m model) transcript(msg answerMsg) string {
	if msg.err != nil {
		return fmt.Sprintf("  %s %v\n", cliui.FailMark, msg.err)
	}

	var b strings.Builder
	b.WriteString(assistantPrompt)
	b.WriteString(strings.TrimSpace(m.render(msg.answer.Answer)))
	b.WriteString("\n")

	if m.showContext && msg.answer.Context != "" {
		b.WriteString(cliui.DimStyle.Render(fmt.Sprintf("  context (score %.3f): %s",
			msg.answer.Score, cliui.Truncate(msg.answer.Context, 80))))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) View() tea.View {
	if m.waiting {
		return tea.NewView(m.spinner.View() + " thinking...\n")
	}
	return tea.NewView(m.input.View() + "\n")
}
