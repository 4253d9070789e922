package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

var (
	askToolName    = "ask"
	askDescription = "Answer a question using the stored notes. The single most similar note is given to the model as context when it is relevant enough."

	addNoteToolName    = "add_note"
	addNoteDescription = "Store a free-text note and index it so later questions can use it as context."

	listNotesToolName    = "list_notes"
	listNotesDescription = "List every stored note, oldest first."

	getNoteToolName    = "get_note"
	getNoteDescription = "Fetch a single stored note by id."

	deleteNoteToolName    = "delete_note"
	deleteNoteDescription = "Delete a stored note and its index entry by id."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer; a default question is used when empty"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Context  string  `json:"context,omitempty"`
	NoteIDs  []int64 `json:"note_ids,omitempty"`
}

// AddNoteInput represents the input arguments for the add_note tool.
type AddNoteInput struct {
	Text string `json:"text" jsonschema:"the note text"`
}

// AddNoteOutput represents the output of the add_note tool.
type AddNoteOutput struct {
	ID       int64      `json:"id"`
	Text     string     `json:"text"`
	Inserted vector.Ack `json:"inserted"`
}

// ListNotesInput takes no arguments.
type ListNotesInput struct{}

// ListNotesOutput represents the output of the list_notes tool.
type ListNotesOutput struct {
	Notes []*storage.Note `json:"notes"`
	Count int             `json:"count"`
}

// NoteIDInput identifies a note.
type NoteIDInput struct {
	ID int64 `json:"id" jsonschema:"the note id"`
}

// NoteOutput wraps a single note.
type NoteOutput struct {
	Note *storage.Note `json:"note"`
}

// DeleteNoteOutput represents the output of the delete_note tool.
type DeleteNoteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	s.config.Logger.Debug("MCP ask request", "question", input.Question)

	answer, err := s.config.Notebook.Ask(ctx, input.Question)
	if err != nil {
		s.config.Logger.Error("failed to answer question", logger.Err(err))
		return toolError("Failed to answer question: %v", err), AskOutput{}, nil
	}

	return jsonResult(AskOutput{
		Question: answer.Question,
		Answer:   answer.Text,
		Context:  answer.Context,
		NoteIDs:  answer.NoteIDs,
	})
}

func (s *Server) handleAddNote(ctx context.Context, _ *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, AddNoteOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return toolError("text is required"), AddNoteOutput{}, nil
	}

	result, err := s.config.Notebook.AddNote(ctx, input.Text)
	if err != nil {
		s.config.Logger.Error("failed to add note", logger.Err(err))
		return toolError("Failed to add note: %v", err), AddNoteOutput{}, nil
	}

	return jsonResult(AddNoteOutput{
		ID:       result.ID,
		Text:     result.Text,
		Inserted: result.Inserted,
	})
}

func (s *Server) handleListNotes(ctx context.Context, _ *mcp.CallToolRequest, _ ListNotesInput) (*mcp.CallToolResult, ListNotesOutput, error) {
	notes, err := s.config.Notebook.ListNotes(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list notes", logger.Err(err))
		return toolError("Failed to list notes: %v", err), ListNotesOutput{}, nil
	}
	if notes == nil {
		notes = []*storage.Note{}
	}

	return jsonResult(ListNotesOutput{Notes: notes, Count: len(notes)})
}

func (s *Server) handleGetNote(ctx context.Context, _ *mcp.CallToolRequest, input NoteIDInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := s.config.Notebook.GetNote(ctx, input.ID)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return toolError("note %d not found", input.ID), NoteOutput{}, nil
		}
		s.config.Logger.Error("failed to get note", logger.NoteID(input.ID), logger.Err(err))
		return toolError("Failed to get note: %v", err), NoteOutput{}, nil
	}

	return jsonResult(NoteOutput{Note: note})
}

func (s *Server) handleDeleteNote(ctx context.Context, _ *mcp.CallToolRequest, input NoteIDInput) (*mcp.CallToolResult, DeleteNoteOutput, error) {
	if err := s.config.Notebook.DeleteNote(ctx, input.ID); err != nil {
		s.config.Logger.Error("failed to delete note", logger.NoteID(input.ID), logger.Err(err))
		return toolError("Failed to delete note: %v", err), DeleteNoteOutput{}, nil
	}

	return jsonResult(DeleteNoteOutput{ID: input.ID, Deleted: true})
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult returns output both as structured content and as serialized JSON
// in a TextContent block for clients that only read text.
func jsonResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return toolError("Failed to serialize results: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

var _ Notebook = (*rag.Notebook)(nil)
