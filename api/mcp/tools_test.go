package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragnoteslogger "github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	testutils "github.com/papercomputeco/ragnotes/pkg/utils/test"
)

func resultText(result *mcp.CallToolResult) string {
	Expect(result.Content).To(HaveLen(1))
	text, ok := result.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return text.Text
}

var _ = Describe("Tools", func() {
	var (
		ctx      context.Context
		server   *Server
		store    *testutils.MockStorageDriver
		embedder *testutils.MockEmbedder
		chatter  *testutils.MockChatter
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStorageDriver()
		embedder = testutils.NewMockEmbedder()
		chatter = testutils.NewMockChatter("Paris.")

		notebook, err := rag.New(rag.Config{
			Store:    store,
			Vectors:  testutils.NewMockVectorDriver(),
			Embedder: embedder,
			Chatter:  chatter,
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{Notebook: notebook, Logger: ragnoteslogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("add_note", func() {
		It("stores the note and returns the id", func() {
			result, out, err := server.handleAddNote(ctx, nil, AddNoteInput{Text: "The capital of France is Paris."})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.ID).To(Equal(int64(1)))
			Expect(out.Inserted.Count).To(Equal(1))

			var decoded AddNoteOutput
			Expect(json.Unmarshal([]byte(resultText(result)), &decoded)).To(Succeed())
			Expect(decoded).To(Equal(out))
		})

		It("rejects empty text as a tool error", func() {
			result, _, err := server.handleAddNote(ctx, nil, AddNoteInput{Text: " "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(Equal("text is required"))
			Expect(store.InsertCalls).To(BeZero())
		})

		It("reports backend failures as a tool error", func() {
			store.FailInsert = true
			result, _, err := server.handleAddNote(ctx, nil, AddNoteInput{Text: "x"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Failed to add note"))
		})
	})

	Describe("ask", func() {
		It("answers with the matching note as context", func() {
			_, _, err := server.handleAddNote(ctx, nil, AddNoteInput{Text: "The capital of France is Paris."})
			Expect(err).NotTo(HaveOccurred())

			result, out, err := server.handleAsk(ctx, nil, AskInput{Question: "The capital of France is Paris."})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Answer).To(Equal("Paris."))
			Expect(out.Context).To(Equal("Context:\n- The capital of France is Paris."))
			Expect(out.NoteIDs).To(Equal([]int64{1}))
		})

		It("uses the default question when empty", func() {
			_, out, err := server.handleAsk(ctx, nil, AskInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Question).To(Equal(rag.DefaultQuestion))
		})

		It("reports chat failures as a tool error", func() {
			chatter.Fail = true
			result, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("list_notes, get_note and delete_note", func() {
		BeforeEach(func() {
			for _, text := range []string{"one", "two"} {
				_, _, err := server.handleAddNote(ctx, nil, AddNoteInput{Text: text})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists notes in id order", func() {
			_, out, err := server.handleListNotes(ctx, nil, ListNotesInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Count).To(Equal(2))
			Expect(out.Notes[0].Text).To(Equal("one"))
			Expect(out.Notes[1].Text).To(Equal("two"))
		})

		It("gets a note by id", func() {
			_, out, err := server.handleGetNote(ctx, nil, NoteIDInput{ID: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Note.Text).To(Equal("two"))
		})

		It("reports unknown notes as a tool error", func() {
			result, _, err := server.handleGetNote(ctx, nil, NoteIDInput{ID: 9})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(Equal("note 9 not found"))
		})

		It("deletes a note", func() {
			_, out, err := server.handleDeleteNote(ctx, nil, NoteIDInput{ID: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Deleted).To(BeTrue())

			_, list, err := server.handleListNotes(ctx, nil, ListNotesInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Count).To(Equal(1))
		})
	})

	It("returns an empty list rather than null", func() {
		empty, err := rag.New(rag.Config{
			Store:    testutils.NewMockStorageDriver(),
			Vectors:  testutils.NewMockVectorDriver(),
			Embedder: embedder,
			Chatter:  chatter,
		})
		Expect(err).NotTo(HaveOccurred())
		s, err := NewServer(Config{Notebook: empty, Logger: ragnoteslogger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		result, _, err := s.handleListNotes(ctx, nil, ListNotesInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(resultText(result)).To(Equal(`{"notes":[],"count":0}`))
	})
})
