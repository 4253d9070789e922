// Package mcp provides an MCP (Model Context Protocol) server exposing the
// notebook as tools: asking questions and reading or writing notes.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/utils"
)

// Notebook is the subset of *rag.Notebook the tools call.
type Notebook interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
	AddNote(ctx context.Context, text string) (*rag.AddNoteResult, error)
	DeleteNote(ctx context.Context, id int64) error
	ListNotes(ctx context.Context) ([]*storage.Note, error)
	GetNote(ctx context.Context, id int64) (*storage.Note, error)
}

type Config struct {
	// Notebook answers questions and manages notes
	Notebook Notebook

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the notebook tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "ragnotes",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Notebook == nil {
			return nil, errors.New("notebook is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        addNoteToolName,
			Description: addNoteDescription,
		}, s.handleAddNote)
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        listNotesToolName,
			Description: listNotesDescription,
		}, s.handleListNotes)
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        getNoteToolName,
			Description: getNoteDescription,
		}, s.handleGetNote)
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        deleteNoteToolName,
			Description: deleteNoteDescription,
		}, s.handleDeleteNote)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
