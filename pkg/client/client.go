// Package client calls a running ragnotes API server. The CLI commands that
// talk to a server (ask, chat, note) share it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/papercomputeco/ragnotes/api"
	"github.com/papercomputeco/ragnotes/pkg/storage"
)

// DefaultTimeout bounds a single request, including the chat completion
// behind /query.
const DefaultTimeout = 2 * time.Minute

// ErrNotFound is returned when the server has no note with the requested id.
var ErrNotFound = errors.New("note not found")

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed (HTTP %d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Client is an HTTP client for the ragnotes API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for the server at target, e.g. http://localhost:8787.
func New(target string) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API target URL: %q needs a scheme and host", target)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// DELETE answers with a redirect to the notes page; the status is
			// the result.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Ask sends question to GET /query and returns the structured answer.
func (c *Client) Ask(ctx context.Context, question string) (*api.QueryResponse, error) {
	q := url.Values{}
	q.Set("text", question)
	q.Set("format", "json")

	var out api.QueryResponse
	if err := c.do(ctx, http.MethodGet, "/query", q, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddNote stores text through POST /notes.
func (c *Client) AddNote(ctx context.Context, text string) (*api.CreateNoteResponse, error) {
	var out api.CreateNoteResponse
	in := api.CreateNoteRequest{Text: text}
	if err := c.do(ctx, http.MethodPost, "/notes", nil, in, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotes returns every stored note.
func (c *Client) ListNotes(ctx context.Context) ([]*storage.Note, error) {
	var out []*storage.Note
	if err := c.do(ctx, http.MethodGet, "/notes.json", nil, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNote returns one note, or ErrNotFound.
func (c *Client) GetNote(ctx context.Context, id int64) (*storage.Note, error) {
	var out storage.Note
	err := c.do(ctx, http.MethodGet, "/notes/"+strconv.FormatInt(id, 10), nil, nil, http.StatusOK, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &out, nil
}

// DeleteNote removes a note and its embedding.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+strconv.FormatInt(id, 10), nil, nil, http.StatusSeeOther, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any, want int, out any) error {
	u := *c.baseURL
	u.Path = path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to ragnotes API at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage extracts the message from an api.ErrorResponse body, falling
// back to the raw body.
func errorMessage(data []byte) string {
	var e api.ErrorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(bytes.TrimSpace(data))
}
