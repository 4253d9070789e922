package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	apimcp "github.com/papercomputeco/ragnotes/api/mcp"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
)

// Notebook is what the handlers need from *rag.Notebook.
type Notebook interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
	AddNote(ctx context.Context, text string) (*rag.AddNoteResult, error)
	DeleteNote(ctx context.Context, id int64) error
	ListNotes(ctx context.Context) ([]*storage.Note, error)
	GetNote(ctx context.Context, id int64) (*storage.Note, error)
}

// Server is the API server for asking questions and managing notes
type Server struct {
	config Config
	notes  Notebook
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server around notes.
func NewServer(config Config, notes Notebook, logger *slog.Logger) (*Server, error) {
	if notes == nil {
		return nil, errors.New("notebook is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	// Request values reach long-lived stores, so they must not alias
	// fasthttp's reused buffers.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config: config,
		notes:  notes,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	app.Get("/", s.handleAskPage)
	app.Get("/write", s.handleWritePage)
	app.Get("/notes", s.handleNotesPage)

	app.Get("/notes.json", s.handleListNotes)
	app.Get("/notes/:id<int>", s.handleGetNote)
	app.Post("/notes", s.handleCreateNote)
	app.Delete("/notes/:id", s.handleDeleteNote)
	app.Get("/query", s.handleQuery)

	if config.MCP {
		mcpServer, err := apimcp.NewServer(apimcp.Config{
			Notebook: notes,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Handler exposes the server as a net/http handler, for embedding behind
// another server or in tests.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
