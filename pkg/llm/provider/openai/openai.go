// Package openai implements llm.Chatter on the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/papercomputeco/ragnotes/pkg/llm"
)

// DefaultChatModel is the default model used for chat.
const DefaultChatModel = "gpt-4.1-mini"

// Config holds OpenAI chatter configuration.
type Config struct {
	APIKey string

	// BaseURL is optional; it points the client at an OpenAI-compatible
	// server or a test double.
	BaseURL string

	// Model defaults to DefaultChatModel.
	Model string

	Temperature *float64

	Logger *slog.Logger
}

// Chatter implements llm.Chatter with openai-go.
type Chatter struct {
	client      openaisdk.Client
	model       string
	temperature *float64
	logger      *slog.Logger
}

// New creates an OpenAI chatter. Returns an error if the API key is missing.
func New(c Config) (*Chatter, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai: missing api key")
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
		client:      openaisdk.NewClient(ClientOptions(c.APIKey, c.BaseURL)...),
		model:       model,
		temperature: c.Temperature,
		logger:      logger,
	}, nil
}

// ClientOptions builds the request options shared by the chat and embedding
// clients. SDK retries are disabled; callers see the first failure.
func ClientOptions(apiKey, baseURL string) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return opts
}

// convertMessages maps llm messages onto OpenAI message params in order.
func convertMessages(msgs []llm.Message) []openaisdk.ChatCompletionMessageParamUnion {
	result := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			result = append(result, openaisdk.SystemMessage(m.Content))
		case llm.RoleAssistant:
			result = append(result, openaisdk.AssistantMessage(m.Content))
		default:
			result = append(result, openaisdk.UserMessage(m.Content))
		}
	}
	return result
}

// Chat sends msgs to the Chat Completions API.
func (c *Chatter) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: convertMessages(msgs),
	}
	if c.temperature != nil {
		params.Temperature = param.NewOpt(*c.temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", llm.ErrChat, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices returned", llm.ErrChat)
	}

	c.logger.Debug("openai chat completed",
		"model", completion.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
	)

	return completion.Choices[0].Message.Content, nil
}

// Close releases resources held by the chatter.
func (c *Chatter) Close() error { return nil }

var _ llm.Chatter = (*Chatter)(nil)
