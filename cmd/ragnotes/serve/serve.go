// Package servecmder provides the serve command that runs the ragnotes API
// server and web UI.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/api"
	"github.com/papercomputeco/ragnotes/cmd/ragnotes/sqlitepath"
	"github.com/papercomputeco/ragnotes/pkg/cliui"
	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/logger"
	ragutils "github.com/papercomputeco/ragnotes/pkg/rag/utils"
)

type serveCommander struct {
	flags    serveFlags
	mcp      bool
	logFile  string
	jsonLogs bool

	debug     bool
	configDir string
	cfg       *config.Config
	logger    *slog.Logger
}

// serveFlags are the registry-backed flags; their values reach the config
// through viper.
type serveFlags struct {
	listen        string
	storage       string
	sqlite        string
	postgres      string
	vectorProv    string
	vectorTarget  string
	collection    string
	embeddingProv string
	embeddingTgt  string
	embeddingMod  string
	embeddingDims uint
	chatProv      string
	chatTgt       string
	chatModel     string
	onPartial     string
	eventsProv    string
	eventsBrokers string
	eventsTopic   string
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagChatProv,
	config.FlagChatTgt,
	config.FlagChatModel,
	config.FlagOnPartial,
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

const serveLongDesc string = `Run the ragnotes API server and web UI.

The server answers questions on GET /query, stores notes on POST /notes and
serves the ask, write and notes pages. The MCP endpoint is mounted on /mcp
unless disabled.

Every flag defaults to the config file, then RAGNOTES_* environment
variables, then built-in defaults. SQLite databases default to the
.ragnotes/ directory.

Examples:
  ragnotes serve
  ragnotes serve --listen :9000 --chat-provider openai --chat-model gpt-4.1-mini
  ragnotes serve --vector-store-provider qdrant --vector-store-target localhost:6334
  ragnotes serve --events-provider kafka --events-brokers localhost:9092
  ragnotes serve --log-file ragnotes.log`

const serveShortDesc string = "Run the ragnotes server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			var err error
			cmder.cfg, err = resolveConfig(cmd, cmder.configDir)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &f.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &f.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.sqlite)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &f.postgres)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &f.vectorProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &f.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &f.collection)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &f.embeddingProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &f.embeddingTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &f.embeddingMod)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &f.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatProv, &f.chatProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatTgt, &f.chatTgt)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatModel, &f.chatModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagOnPartial, &f.onPartial)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProv, &f.eventsProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsBrokers, &f.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &f.eventsTopic)

	cmd.Flags().BoolVar(&cmder.mcp, "mcp", true, "Mount the MCP endpoint on /mcp")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json", false, "Write JSON logs to stderr")

	return cmd
}

// resolveConfig layers flags over env, config file and defaults.
func resolveConfig(cmd *cobra.Command, configDir string) (*config.Config, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)
	if f := cmd.Flags().Lookup("mcp"); f != nil {
		if err := v.BindPFlag("mcp.enabled", f); err != nil {
			return nil, fmt.Errorf("binding mcp flag: %w", err)
		}
	}

	return config.FromViper(v), nil
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	sqlitePath, vectorTarget, err := sqlitepath.ResolveStores(c.cfg, c.configDir)
	if err != nil {
		return err
	}

	notebook, components, err := ragutils.NewNotebook(ctx, &ragutils.NewNotebookOpts{
		Config:       c.cfg,
		SQLitePath:   sqlitePath,
		VectorTarget: vectorTarget,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			c.logger.Warn("failed to close components", logger.Err(err))
		}
	}()

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
		MCP:        c.cfg.MCP.Enabled,
	}, notebook, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		return err
	case <-sigCtx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}

// setupLogger builds the console logger and, with --log-file, fans out to a
// JSON file logger as well.
func (c *serveCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLogs),
		logger.WithPretty(!c.jsonLogs && cliui.Interactive(os.Stderr)),
		logger.WithPrefix("serve"),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))

	return func() { closeQuietly(f) }, nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "closing: %v\n", err)
	}
}
