// Package configcmder provides the config command for managing persistent
// ragnotes configuration stored in the .ragnotes/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/config"
)

const configLongDesc string = `Manage persistent ragnotes configuration.

Configuration is stored as config.toml in the .ragnotes/ directory and
provides default values for command flags. CLI flags and RAGNOTES_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure, for example
api.listen, embedding.model or rag.similarity_cutoff. Run "ragnotes config
list" to see every key.

Examples:
  ragnotes config set chat.provider openai
  ragnotes config set embedding.model nomic-embed-text
  ragnotes config get rag.similarity_cutoff
  ragnotes config list`

const configShortDesc string = "Manage persistent ragnotes configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
