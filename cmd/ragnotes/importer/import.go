// Package importcmder provides the import command that bulk loads text files
// as notes, optionally watching a directory for new ones.
package importcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/cmd/ragnotes/sqlitepath"
	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/importer"
	"github.com/papercomputeco/ragnotes/pkg/logger"
	ragutils "github.com/papercomputeco/ragnotes/pkg/rag/utils"
)

// notebookFactory opens the notebook imported notes are written to. The
// returned func releases its backends.
type notebookFactory func(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (importer.NoteAdder, func() error, error)

type importCommander struct {
	watch   string
	workers uint

	debug       bool
	configDir   string
	cfg         *config.Config
	logger      *slog.Logger
	out         io.Writer
	newNotebook notebookFactory
}

const importLongDesc string = `Import text files as notes.

Each .txt, .md or .markdown file becomes one note. Directories are read one
level deep. Notes are written straight to the configured note store and vector
index, so the server does not need to be running.

With --watch the command keeps running and imports files written to the
directory until interrupted.

Examples:
  ragnotes import notes/
  ragnotes import todo.md ideas.txt --workers 8
  ragnotes import --watch ~/notes`

const importShortDesc string = "Import files as notes"

func NewImportCmd() *cobra.Command {
	return newImportCmd(localNotebook)
}

func newImportCmd(factory notebookFactory) *cobra.Command {
	cmder := &importCommander{newNotebook: factory}

	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: importShortDesc,
		Long:  importLongDesc,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmder.watch == "" {
				return fmt.Errorf("nothing to import: pass paths or --watch")
			}

			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagImportWorkers})
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()
			cmder.logger = logger.New(
				logger.WithDebug(cmder.debug),
				logger.WithPretty(cliui.Interactive(os.Stderr)),
				logger.WithPrefix("import"),
				logger.WithWriter(os.Stderr),
			)
			return cmder.run(cmd.Context(), args)
		},
	}

	config.AddUintFlag(cmd, config.Flags, config.FlagImportWorkers, &cmder.workers)
	cmd.Flags().StringVar(&cmder.watch, "watch", "", "Keep importing files written to this directory")

	return cmd
}

func (c *importCommander) run(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	notes, closeNotes, err := c.newNotebook(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotes(); err != nil {
			c.logger.Warn("failed to close components", logger.Err(err))
		}
	}()

	pool, err := importer.NewPool(&importer.Config{
		Notes:      notes,
		NumWorkers: c.cfg.Import.Workers,
		QueueSize:  c.cfg.Import.QueueSize,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating import pool: %w", err)
	}

	imp := importer.New(pool, c.logger)

	var importErr error
	if len(paths) > 0 {
		var queued int
		queued, importErr = imp.ImportPaths(ctx, paths)
		c.logger.Debug("queued files", "count", queued)
	}

	if c.watch != "" && importErr == nil {
		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(c.out, "%s %s\n", cliui.KeyStyle.Render("Watching"), c.watch)
		importErr = imp.Watch(sigCtx, c.watch)
	}

	// Close drains the queue, so the stats below are final.
	pool.Close()
	stats := pool.Stats()

	fmt.Fprintf(c.out, "%s Imported %s notes",
		cliui.Mark(importErr),
		cliui.ValueStyle.Render(fmt.Sprint(stats.Imported)),
	)
	if stats.Failed > 0 {
		fmt.Fprintf(c.out, " %s", cliui.DimStyle.Render(fmt.Sprintf("(%d failed)", stats.Failed)))
	}
	fmt.Fprintln(c.out)

	if importErr != nil {
		return importErr
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d notes failed to import", stats.Failed)
	}
	return nil
}

func localNotebook(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (importer.NoteAdder, func() error, error) {
	sqlitePath, vectorTarget, err := sqlitepath.ResolveStores(cfg, configDir)
	if err != nil {
		return nil, nil, err
	}

	notebook, components, err := ragutils.NewNotebook(ctx, &ragutils.NewNotebookOpts{
		Config:       cfg,
		SQLitePath:   sqlitePath,
		VectorTarget: vectorTarget,
		Logger:       log,
	})
	if err != nil {
		return nil, nil, err
	}

	return notebook, components.Close, nil
}
