package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/ragnotes/pkg/llm"
)

const (
	// DefaultChatModel is the default model used for chat.
	DefaultChatModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Config holds configuration for the Ollama chatter.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Model defaults to DefaultChatModel.
	Model string

	// Temperature is sent as a model option when set.
	Temperature *float64

	Logger *slog.Logger
}

// Chatter calls Ollama's /api/chat endpoint without streaming.
type Chatter struct {
	baseURL     string
	model       string
	temperature *float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// New creates an Ollama chatter.
func New(c Config) *Chatter {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		baseURL:     baseURL,
		model:       model,
		temperature: c.Temperature,
		httpClient: &http.Client{
			// local models can be slow to load
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// Chat sends msgs to Ollama and returns the assistant's reply.
func (c *Chatter) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	reqBody := ollamaRequest{
		Model:    c.model,
		Messages: make([]ollamaMessage, len(msgs)),
		Stream:   false,
	}
	for i, m := range msgs {
		reqBody.Messages[i] = ollamaMessage{Role: m.Role, Content: m.Content}
	}
	if c.temperature != nil {
		reqBody.Options = &ollamaOptions{Temperature: c.temperature}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %w", llm.ErrChat, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", llm.ErrChat, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %w", llm.ErrChat, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var oe ollamaError
		if json.Unmarshal(body, &oe) == nil && oe.Error != "" {
			return "", fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrChat, resp.StatusCode, oe.Error)
		}
		return "", fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrChat, resp.StatusCode, string(body))
	}

	var chatResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", llm.ErrChat, err)
	}

	c.logger.Debug("ollama chat completed",
		"model", chatResp.Model,
		"prompt_tokens", chatResp.PromptEvalCount,
		"completion_tokens", chatResp.EvalCount,
		"done_reason", chatResp.DoneReason,
	)

	return chatResp.Message.Content, nil
}

// Close releases resources held by the chatter.
func (c *Chatter) Close() error {
	return nil
}

var _ llm.Chatter = (*Chatter)(nil)
