package api

import (
	"embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed ui/*.html
var pages embed.FS

func (s *Server) handleAskPage(c *fiber.Ctx) error {
	return sendPage(c, "ui/ask.html")
}

func (s *Server) handleWritePage(c *fiber.Ctx) error {
	return sendPage(c, "ui/write.html")
}

func (s *Server) handleNotesPage(c *fiber.Ctx) error {
	return sendPage(c, "ui/notes.html")
}

func sendPage(c *fiber.Ctx, name string) error {
	body, err := pages.ReadFile(name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "page not found"})
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}
