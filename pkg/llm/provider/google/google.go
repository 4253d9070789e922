// Package google implements llm.Chatter on the Gemini API via genai.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/papercomputeco/ragnotes/pkg/llm"
)

// DefaultChatModel is the default model used for chat.
const DefaultChatModel = "gemini-2.5-flash"

// Config holds Gemini chatter configuration.
type Config struct {
	APIKey string

	// BaseURL overrides the Gemini API endpoint.
	BaseURL string

	// Model defaults to DefaultChatModel.
	Model string

	Temperature *float32

	Logger *slog.Logger
}

// Chatter implements llm.Chatter with genai.
type Chatter struct {
	client      *genai.Client
	model       string
	temperature *float32
	logger      *slog.Logger
}

// NewClient builds a Gemini API client shared by the chat and embedding
// providers.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("google: missing api key")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("google: creating client: %w", err)
	}
	return client, nil
}

// New creates a Gemini chatter.
func New(ctx context.Context, c Config) (*Chatter, error) {
	client, err := NewClient(ctx, c.APIKey, c.BaseURL)
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

	return &Chatter{
		client:      client,
		model:       model,
		temperature: c.Temperature,
		logger:      logger,
	}, nil
}

// buildRequest puts system messages into SystemInstruction parts, in order,
// and maps the remaining messages onto user and model contents.
func (c *Chatter) buildRequest(msgs []llm.Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	system, rest := llm.SplitSystem(msgs)

	cfg := &genai.GenerateContentConfig{}
	if c.temperature != nil {
		cfg.Temperature = genai.Ptr(*c.temperature)
	}
	if len(system) > 0 {
		parts := make([]*genai.Part, len(system))
		for i, s := range system {
			parts[i] = &genai.Part{Text: s}
		}
		cfg.SystemInstruction = &genai.Content{Parts: parts}
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.Role(genai.RoleUser)
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	return contents, cfg
}

// Chat sends msgs to GenerateContent.
func (c *Chatter) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	contents, cfg := c.buildRequest(msgs)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: google: %w", llm.ErrChat, err)
	}

	if resp.UsageMetadata != nil {
		c.logger.Debug("gemini chat completed",
			"model", c.model,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"completion_tokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}

	return resp.Text(), nil
}

// Close releases resources held by the chatter.
func (c *Chatter) Close() error { return nil }

var _ llm.Chatter = (*Chatter)(nil)
