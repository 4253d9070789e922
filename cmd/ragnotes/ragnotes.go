// Package ragnotescmder is the root ragnotes command.
package ragnotescmder

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/ask"
	chatcmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/chat"
	configcmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/config"
	importcmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/importer"
	initcmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/init"
	notecmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/note"
	servecmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/serve"
	versioncmder "github.com/papercomputeco/ragnotes/cmd/version"
)

const ragnotesLongDesc string = `ragnotes is a small notes service that answers questions
using your own notes as context.

Notes are stored in a note store and embedded into a vector index. A question
is embedded, the closest note is looked up, and when it is similar enough it
is handed to the chat model as context.

Run the server and UI:
  ragnotes serve

Talk to a running server:
  ragnotes ask "what is the wifi password?"
  ragnotes note add "the wifi password is hunter2"
  ragnotes chat

Provider API keys are read from the environment (OPENAI_API_KEY,
ANTHROPIC_API_KEY, GEMINI_API_KEY, CLOUDFLARE_API_TOKEN). A .env file in the
working directory is loaded first.`

const ragnotesShortDesc string = "ragnotes - question answering over your notes"

func NewRagnotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ragnotes",
		Short:         ragnotesShortDesc,
		Long:          ragnotesLongDesc,
		SilenceUsage:  true,
	}

	// Variables already in the environment win over .env.
	cobra.OnInitialize(func() { _ = godotenv.Load() })

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .ragnotes/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(notecmder.NewNoteCmd())
	cmd.AddCommand(importcmder.NewImportCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
