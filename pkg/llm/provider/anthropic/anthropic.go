// Package anthropic implements llm.Chatter on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/ragnotes/pkg/llm"
)

const (
	// DefaultChatModel is the default model used for chat.
	DefaultChatModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens bounds the reply length; the Messages API requires it.
	DefaultMaxTokens = 1024
)

// Config holds Anthropic chatter configuration.
type Config struct {
	APIKey  string
	BaseURL string

	// Model defaults to DefaultChatModel.
	Model string

	// MaxTokens defaults to DefaultMaxTokens.
	MaxTokens int64

	Temperature *float64

	Logger *slog.Logger
}

// Chatter implements llm.Chatter with anthropic-sdk-go.
type Chatter struct {
	client      anthropicsdk.Client
	model       string
	maxTokens   int64
	temperature *float64
	logger      *slog.Logger
}

// New creates an Anthropic chatter. Returns an error if the API key is missing.
func New(c Config) (*Chatter, error) {
	if c.APIKey == "" {
		return nil, errors.New("anthropic: missing api key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(0),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}

	model := c.Model
	if model == "" {
		model = DefaultChatModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Chatter{
		client:      anthropicsdk.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: c.Temperature,
		logger:      logger,
	}, nil
}

// buildParams moves system messages into the top-level system blocks, in
// their original order, and converts the rest of the conversation.
func (c *Chatter) buildParams(msgs []llm.Message) anthropicsdk.MessageNewParams {
	system, rest := llm.SplitSystem(msgs)

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.model),
		MaxTokens: c.maxTokens,
	}

	for _, s := range system {
		params.System = append(params.System, anthropicsdk.TextBlockParam{Text: s})
	}

	for _, m := range rest {
		switch m.Role {
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		}
	}

	if c.temperature != nil {
		params.Temperature = anthropicsdk.Float(*c.temperature)
	}

	return params
}

// Chat sends msgs to the Messages API and joins the text blocks of the reply.
func (c *Chatter) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	resp, err := c.client.Messages.New(ctx, c.buildParams(msgs))
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %w", llm.ErrChat, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	c.logger.Debug("anthropic chat completed",
		"model", string(resp.Model),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", string(resp.StopReason),
	)

	return sb.String(), nil
}

// Close releases resources held by the chatter.
func (c *Chatter) Close() error { return nil }

var _ llm.Chatter = (*Chatter)(nil)
