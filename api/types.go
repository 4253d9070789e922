package api

import (
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	Text string `json:"text" form:"text"`
}

// CreateNoteResponse is the body of a successful POST /notes.
type CreateNoteResponse struct {
	ID       int64      `json:"id"`
	Text     string     `json:"text"`
	Inserted vector.Ack `json:"inserted"`
}

// QueryResponse is the body of GET /query?format=json.
type QueryResponse struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Context  string  `json:"context,omitempty"`
	NoteIDs  []int64 `json:"note_ids,omitempty"`
	Score    float32 `json:"score,omitempty"`
}
