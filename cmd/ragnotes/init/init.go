// Package initcmder provides the init command for initializing a local
// .ragnotes directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .ragnotes/ directory in the current working directory.

Creates a local .ragnotes/ directory that takes precedence over the default
~/.ragnotes/ directory for configuration and the local SQLite databases.
This keeps a separate notebook per project or directory.

With --preset a config.toml is written with provider defaults for one of:
` + "  ollama, openai, anthropic, google, workersai" + `

An existing config.toml is only replaced with --force.

Examples:
  ragnotes init
  ragnotes init --preset openai
  ragnotes init --preset google --force`

const initShortDesc string = "Initialize a local .ragnotes/ directory"

type initCommander struct {
	preset string
	force  bool
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Write a config.toml for a provider preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Replace an existing config.toml")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *initCommander) run(w io.Writer) error {
	var cfg *config.Config
	if c.preset != "" {
		var err error
		cfg, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	dir, created, err := dotdir.NewManager().InitLocal()
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(w, "%s Initialized %s directory: %s\n", cliui.SuccessMark, dotdir.DirName, dir)
	} else {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(cfger.GetTarget()); err == nil && !c.force {
		return fmt.Errorf("config file already exists: %s (use --force to replace it)", cfger.GetTarget())
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Wrote %s preset to %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(c.preset),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
