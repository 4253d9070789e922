package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListNotes returns every note as a JSON array ordered by id.
func (s *Server) handleListNotes(c *fiber.Ctx) error {
	notes, err := s.notes.ListNotes(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list notes", logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list notes"})
	}
	if notes == nil {
		notes = []*storage.Note{}
	}

	return c.JSON(notes)
}

// handleGetNote returns a single note.
func (s *Server) handleGetNote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	note, err := s.notes.GetNote(c.UserContext(), id)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: nf.Error()})
		}
		s.logger.Error("failed to get note", logger.NoteID(id), logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get note"})
	}

	return c.JSON(note)
}

// handleQuery answers the question in the "text" query parameter.
// The answer is plain text unless format=json is given.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	answer, err := s.notes.Ask(c.UserContext(), c.Query("text"))
	if err != nil {
		s.logger.Error("failed to answer question", logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	if c.Query("format") == "json" {
		return c.JSON(QueryResponse{
			Question: answer.Question,
			Answer:   answer.Text,
			Context:  answer.Context,
			NoteIDs:  answer.NoteIDs,
			Score:    answer.Score,
		})
	}

	return c.SendString(answer.Text)
}

// handleCreateNote stores and indexes a note.
func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	var req CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: rag.ErrEmptyText.Error()})
	}

	result, err := s.notes.AddNote(c.UserContext(), req.Text)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyText) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("failed to add note", logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(CreateNoteResponse{
		ID:       result.ID,
		Text:     result.Text,
		Inserted: result.Inserted,
	})
}

// handleDeleteNote removes a note and redirects to the notes page. 303 makes
// browsers and fetch follow up with a GET.
func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	if err := s.notes.DeleteNote(c.UserContext(), id); err != nil {
		s.logger.Error("failed to delete note", logger.NoteID(id), logger.Err(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Redirect("/notes", fiber.StatusSeeOther)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}
