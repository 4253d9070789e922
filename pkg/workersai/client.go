// Package workersai is a small client for Cloudflare Workers AI's REST
// "run model" endpoint, shared by the chat and embedding providers.
package workersai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is Cloudflare's API root.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Config holds Workers AI credentials.
type Config struct {
	AccountID string
	APIToken  string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
}

// Client runs Workers AI models.
type Client struct {
	baseURL    string
	accountID  string
	apiToken   string
	httpClient *http.Client
}

// envelope is Cloudflare's standard response wrapper.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient validates credentials and returns a client.
func NewClient(c Config) (*Client, error) {
	if c.AccountID == "" {
		return nil, errors.New("workers ai: account id is required")
	}
	if c.APIToken == "" {
		return nil, errors.New("workers ai: api token is required")
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		accountID: c.AccountID,
		apiToken:  c.APIToken,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Run posts input to the model and decodes the envelope's result into out.
func (c *Client) Run(ctx context.Context, model string, input, out any) error {
	jsonBody, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("workers ai returned status %d: %s", resp.StatusCode, string(body))
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		msgs := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			msgs[i] = fmt.Sprintf("%d: %s", e.Code, e.Message)
		}
		return fmt.Errorf("workers ai returned status %d: %s", resp.StatusCode, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	return nil
}
