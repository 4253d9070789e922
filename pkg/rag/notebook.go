// Package rag answers questions over stored notes. A Notebook ties together a
// note store, a vector index, an embedder and a chat model: notes are written
// to the store and indexed by id, and questions are answered with the single
// most similar note injected as context.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	"github.com/papercomputeco/ragnotes/pkg/eventstream"
	"github.com/papercomputeco/ragnotes/pkg/eventstream/nop"
	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

const (
	// DefaultQuestion is asked when the caller supplies none.
	DefaultQuestion = "What is the square root of 9?"

	// SystemPrompt is the fixed instruction sent with every question.
	SystemPrompt = "When answering the question or responding, use the context provided, if it is provided and relevant."

	// DefaultTopK is the number of nearest notes considered as context.
	DefaultTopK = 1

	// SimilarityCutoff is the score a match must strictly exceed to be used.
	SimilarityCutoff float32 = 0.75

	// DefaultPublishTimeout bounds how long a write waits on the event
	// publisher before giving up on the event.
	DefaultPublishTimeout = 2 * time.Second

	contextHeader = "Context:\n"
)

// Config holds the collaborators of a Notebook.
type Config struct {
	Store    storage.Driver
	Vectors  vector.Driver
	Embedder embeddings.Embedder
	Chatter  llm.Chatter

	// Publisher receives note lifecycle events. Defaults to a no-op publisher.
	Publisher eventstream.Publisher

	Logger *slog.Logger

	// SimilarityCutoff overrides the default cutoff when greater than zero.
	SimilarityCutoff float32

	// OnPartialFailure selects the dual-write policy. Defaults to PolicySurface.
	OnPartialFailure PartialFailurePolicy

	// PublishTimeout overrides DefaultPublishTimeout when greater than zero.
	PublishTimeout time.Duration
}

// Notebook is the retrieval-and-answer pipeline plus note ingestion and
// deletion. It holds no per-request state and is safe for concurrent use when
// its collaborators are.
type Notebook struct {
	store     storage.Driver
	vectors   vector.Driver
	embedder  embeddings.Embedder
	chatter   llm.Chatter
	publisher eventstream.Publisher
	logger    *slog.Logger
	cutoff    float32
	policy    PartialFailurePolicy

	publishTimeout time.Duration
}

// Answer is the result of Ask.
type Answer struct {
	Question string `json:"question"`
	Text     string `json:"answer"`

	// Context is the block injected into the conversation, empty when no
	// note cleared the cutoff.
	Context string `json:"context,omitempty"`

	NoteIDs []int64 `json:"note_ids,omitempty"`
	Score   float32 `json:"score,omitempty"`
}

// AddNoteResult is the result of AddNote.
type AddNoteResult struct {
	ID       int64      `json:"id"`
	Text     string     `json:"text"`
	Inserted vector.Ack `json:"inserted"`
}

// New validates c and builds a Notebook.
func New(c Config) (*Notebook, error) {
	switch {
	case c.Store == nil:
		return nil, errors.New("note store is required")
	case c.Vectors == nil:
		return nil, errors.New("vector driver is required")
	case c.Embedder == nil:
		return nil, errors.New("embedder is required")
	case c.Chatter == nil:
		return nil, errors.New("chat provider is required")
	}

	policy, err := ParsePartialFailurePolicy(string(c.OnPartialFailure))
	if err != nil {
		return nil, err
	}

	n := &Notebook{
		store:     c.Store,
		vectors:   c.Vectors,
		embedder:  c.Embedder,
		chatter:   c.Chatter,
		publisher: c.Publisher,
		logger:    c.Logger,
		cutoff:    c.SimilarityCutoff,
		policy:    policy,

		publishTimeout: c.PublishTimeout,
	}
	if n.publisher == nil {
		n.publisher = nop.NewPublisher()
	}
	if n.logger == nil {
		n.logger = slog.New(slog.DiscardHandler)
	}
	if n.cutoff <= 0 {
		n.cutoff = SimilarityCutoff
	}
	if n.publishTimeout <= 0 {
		n.publishTimeout = DefaultPublishTimeout
	}
	return n, nil
}

// Ask answers question, using the most similar stored note as context when
// its score is above the cutoff. An empty question is replaced with
// DefaultQuestion.
func (n *Notebook) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}

	embedding, err := embeddings.EmbedOne(ctx, n.embedder, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if embedding == nil {
		return nil, fmt.Errorf("embedding question: %w", ErrNoEmbedding)
	}

	matches, err := n.vectors.Query(ctx, embedding, DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	answer := &Answer{Question: question}

	ids, best := n.relevantIDs(matches)
	if len(ids) > 0 {
		notes, err := n.store.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("loading context notes: %w", err)
		}
		if len(notes) == 0 {
			n.logger.Warn("vector match has no stored note", "note_ids", ids)
		}
		answer.Context = buildContext(notes)
		for _, note := range notes {
			answer.NoteIDs = append(answer.NoteIDs, note.ID)
		}
		if len(notes) > 0 {
			answer.Score = best
		}
	}

	reply, err := n.chatter.Chat(ctx, buildMessages(answer.Context, question))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	answer.Text = reply

	n.logger.Debug("answered question",
		"question", question,
		"context_notes", answer.NoteIDs,
		"score", answer.Score,
	)
	return answer, nil
}

// relevantIDs returns the note ids of matches whose score strictly exceeds
// the cutoff, plus the best such score.
func (n *Notebook) relevantIDs(matches []vector.QueryResult) ([]int64, float32) {
	var (
		ids  []int64
		best float32
	)
	for _, m := range matches {
		if m.Score <= n.cutoff {
			continue
		}
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			n.logger.Warn("skipping vector with non-numeric id", "id", m.ID)
			continue
		}
		ids = append(ids, id)
		if m.Score > best {
			best = m.Score
		}
	}
	return ids, best
}

// buildContext renders notes as the bulleted context block, or "" for none.
func buildContext(notes []*storage.Note) string {
	if len(notes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	for i, note := range notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(note.Text)
	}
	return b.String()
}

// buildMessages orders the conversation: context (if any), the fixed system
// prompt, then the question.
func buildMessages(contextBlock, question string) []llm.Message {
	msgs := make([]llm.Message, 0, 3)
	if contextBlock != "" {
		msgs = append(msgs, llm.SystemMessage(contextBlock))
	}
	return append(msgs,
		llm.SystemMessage(SystemPrompt),
		llm.UserMessage(question),
	)
}

// AddNote stores text as a note, embeds it and indexes the vector under the
// note id.
func (n *Notebook) AddNote(ctx context.Context, text string) (*AddNoteResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var (
		note *storage.Note
		ack  vector.Ack
	)

	op := &dualWriteOp{name: "add note"}
	op.primary = func(ctx context.Context) error {
		var err error
		note, err = n.store.Insert(ctx, text)
		if err != nil {
			return fmt.Errorf("storing note: %w", err)
		}
		if note == nil {
			return ErrNoteNotCreated
		}
		op.noteID = note.ID
		return nil
	}
	op.secondary = func(ctx context.Context) error {
		embedding, err := embeddings.EmbedOne(ctx, n.embedder, note.Text)
		if err != nil {
			return fmt.Errorf("embedding note: %w", err)
		}
		if embedding == nil {
			return ErrNoEmbedding
		}

		ack, err = n.vectors.Add(ctx, []vector.Document{{
			ID:        vectorID(note.ID),
			Embedding: embedding,
		}})
		if err != nil {
			return fmt.Errorf("indexing note: %w", err)
		}
		return nil
	}
	op.compensate = func(ctx context.Context) error {
		return n.store.Delete(ctx, note.ID)
	}

	if err := n.dualWrite(ctx, op); err != nil {
		return nil, err
	}

	n.publish(ctx, eventstream.EventTypeNoteCreated, note.ID, note.Text)
	n.logger.Info("note added", logger.NoteID(note.ID))

	return &AddNoteResult{
		ID:       note.ID,
		Text:     note.Text,
		Inserted: ack,
	}, nil
}

// DeleteNote removes a note from the store and its vector from the index.
// Unknown ids are not an error.
func (n *Notebook) DeleteNote(ctx context.Context, id int64) error {
	op := &dualWriteOp{name: "delete note", noteID: id}
	op.primary = func(ctx context.Context) error {
		if err := n.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting note: %w", err)
		}
		return nil
	}
	op.secondary = func(ctx context.Context) error {
		if err := n.vectors.Delete(ctx, []string{vectorID(id)}); err != nil {
			return fmt.Errorf("deleting note vector: %w", err)
		}
		return nil
	}

	if err := n.dualWrite(ctx, op); err != nil {
		return err
	}

	n.publish(ctx, eventstream.EventTypeNoteDeleted, id, "")
	n.logger.Info("note deleted", logger.NoteID(id))
	return nil
}

// ListNotes returns every stored note ordered by id.
func (n *Notebook) ListNotes(ctx context.Context) ([]*storage.Note, error) {
	notes, err := n.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// GetNote returns a single note. A missing note yields storage.NotFoundError.
func (n *Notebook) GetNote(ctx context.Context, id int64) (*storage.Note, error) {
	note, err := n.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting note: %w", err)
	}
	return note, nil
}

// publish is best effort. The write has already succeeded, so the event gets
// its own deadline that outlives a cancelled request.
func (n *Notebook) publish(ctx context.Context, eventType string, id int64, text string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.publishTimeout)
	defer cancel()

	event := eventstream.NewNoteEvent(eventType, id, text)
	if err := n.publisher.PublishNote(ctx, event); err != nil {
		n.logger.Warn("failed to publish note event",
			"event_type", eventType,
			logger.NoteID(id),
			logger.Err(err),
		)
	}
}

func vectorID(id int64) string {
	return strconv.FormatInt(id, 10)
}
