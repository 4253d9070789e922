// Package notecmder provides the note command for managing the notes of a
// running ragnotes server.
package notecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/client"
	"github.com/papercomputeco/ragnotes/pkg/config"
)

const noteLongDesc string = `Manage the notes of a running ragnotes server.

Use subcommands to add, list, show or remove notes:
  ragnotes note add <text...>     Store and index a note
  ragnotes note list              List all notes
  ragnotes note get <id>          Show one note
  ragnotes note rm <id>           Remove a note and its embedding

Examples:
  ragnotes note add "the wifi password is hunter2"
  echo "standup moved to 10am" | ragnotes note add -
  ragnotes note rm 3`

const noteShortDesc string = "Manage notes"

func NewNoteCmd() *cobra.Command {
	var apiTarget string

	cmd := &cobra.Command{
		Use:   "note",
		Short: noteShortDesc,
		Long:  noteLongDesc,
	}

	flag := config.Flags[config.FlagAPITarget]
	cmd.PersistentFlags().StringVarP(&apiTarget, flag.Name, flag.Shorthand,
		config.NewDefaultConfig().Client.APITarget, flag.Description)

	newClient := func(cmd *cobra.Command) (*client.Client, error) {
		target := apiTarget
		if !cmd.Flags().Changed("api-target") {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return nil, fmt.Errorf("loading config: %w", err)
			}
			cfg, err := cfger.LoadConfig()
			if err != nil {
				return nil, fmt.Errorf("loading config: %w", err)
			}
			target = cfg.Client.APITarget
		}
		return client.New(target)
	}

	cmd.AddCommand(newAddCmd(newClient))
	cmd.AddCommand(newListCmd(newClient))
	cmd.AddCommand(newGetCmd(newClient))
	cmd.AddCommand(newRmCmd(newClient))

	return cmd
}

type clientFactory func(cmd *cobra.Command) (*client.Client, error)
