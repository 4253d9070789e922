// Package workersai implements llm.Chatter on Cloudflare Workers AI text
// generation models.
package workersai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/ragnotes/pkg/llm"
	cf "github.com/papercomputeco/ragnotes/pkg/workersai"
)

// DefaultChatModel is the default text generation model.
const DefaultChatModel = "@cf/meta/llama-3.1-8b-instruct"

// Config holds Workers AI chatter configuration.
type Config struct {
	Client cf.Config

	// Model defaults to DefaultChatModel.
	Model string

	Logger *slog.Logger
}

type runInput struct {
	Messages []llm.Message `json:"messages"`
}

type runResult struct {
	Response string `json:"response"`
}

// Chatter implements llm.Chatter with Workers AI.
type Chatter struct {
	client *cf.Client
	model  string
	logger *slog.Logger
}

// New creates a Workers AI chatter.
func New(c Config) (*Chatter, error) {
	client, err := cf.NewClient(c.Client)
	if err != nil {
		return nil, err
	}

	model := c.Model
	if model == "" {
		model = DefaultChatModel
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Chatter{client: client, model: model, logger: logger}, nil
}

// Chat runs the model with msgs as the messages input.
func (c *Chatter) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	var out runResult
	if err := c.client.Run(ctx, c.model, runInput{Messages: msgs}, &out); err != nil {
		return "", fmt.Errorf("%w: workers ai: %w", llm.ErrChat, err)
	}

	c.logger.Debug("workers ai chat completed", "model", c.model)

	return out.Response, nil
}

// Close releases resources held by the chatter.
func (c *Chatter) Close() error { return nil }

var _ llm.Chatter = (*Chatter)(nil)
