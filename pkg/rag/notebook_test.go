package rag_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/eventstream"
	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	testutils "github.com/papercomputeco/ragnotes/pkg/utils/test"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

const parisNote = "The capital of France is Paris."

var _ = Describe("Notebook", func() {
	var (
		ctx       context.Context
		store     *testutils.MockStorageDriver
		vectors   *testutils.MockVectorDriver
		embedder  *testutils.MockEmbedder
		chatter   *testutils.MockChatter
		publisher *testutils.MockPublisher
		notebook  *rag.Notebook
		policy    rag.PartialFailurePolicy
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStorageDriver()
		vectors = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		chatter = testutils.NewMockChatter("Paris.")
		publisher = testutils.NewMockPublisher()
		policy = rag.PolicySurface
	})

	JustBeforeEach(func() {
		var err error
		notebook, err = rag.New(rag.Config{
			Store:            store,
			Vectors:          vectors,
			Embedder:         embedder,
			Chatter:          chatter,
			Publisher:        publisher,
			OnPartialFailure: policy,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("requires every collaborator", func() {
			_, err := rag.New(rag.Config{Vectors: vectors, Embedder: embedder, Chatter: chatter})
			Expect(err).To(MatchError(ContainSubstring("note store")))

			_, err = rag.New(rag.Config{Store: store, Embedder: embedder, Chatter: chatter})
			Expect(err).To(MatchError(ContainSubstring("vector driver")))

			_, err = rag.New(rag.Config{Store: store, Vectors: vectors, Chatter: chatter})
			Expect(err).To(MatchError(ContainSubstring("embedder")))

			_, err = rag.New(rag.Config{Store: store, Vectors: vectors, Embedder: embedder})
			Expect(err).To(MatchError(ContainSubstring("chat provider")))
		})

		It("rejects unknown partial failure policies", func() {
			_, err := rag.New(rag.Config{
				Store: store, Vectors: vectors, Embedder: embedder, Chatter: chatter,
				OnPartialFailure: "retry",
			})
			Expect(err).To(MatchError(ContainSubstring("unknown partial failure policy")))
		})

		It("works without a publisher or logger", func() {
			nb, err := rag.New(rag.Config{Store: store, Vectors: vectors, Embedder: embedder, Chatter: chatter})
			Expect(err).NotTo(HaveOccurred())
			_, err = nb.AddNote(ctx, "a note")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("AddNote", func() {
		It("returns the id, the exact text and the index acknowledgment", func() {
			result, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.Text).To(Equal(parisNote))
			Expect(result.Inserted).To(Equal(vector.Ack{Count: 1, IDs: []string{"1"}}))
		})

		It("keys the vector by the note id as a string", func() {
			first, err := notebook.AddNote(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
			second, err := notebook.AddNote(ctx, "second")
			Expect(err).NotTo(HaveOccurred())

			Expect(second.ID).To(BeNumerically(">", first.ID))
			Expect(vectors.AddCalls).To(HaveLen(2))
			Expect(vectors.AddCalls[1][0].ID).To(Equal("2"))
		})

		It("publishes a created event", func() {
			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.EventTypes()).To(Equal([]string{eventstream.EventTypeNoteCreated}))
			Expect(publisher.Events[0].Note.Text).To(Equal(parisNote))
		})

		It("does not fail when publishing fails", func() {
			publisher.Fail = true
			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
		})

		It("gives up on a slow publisher after the publish timeout", func() {
			publisher.Delay = time.Minute
			slow, err := rag.New(rag.Config{
				Store:          store,
				Vectors:        vectors,
				Embedder:       embedder,
				Chatter:        chatter,
				Publisher:      publisher,
				PublishTimeout: 50 * time.Millisecond,
			})
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			result, err := slow.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal(parisNote))
			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
			Expect(publisher.Events).To(BeEmpty())
		})

		DescribeTable("rejects empty text before any backend call",
			func(text string) {
				_, err := notebook.AddNote(ctx, text)
				Expect(err).To(MatchError(rag.ErrEmptyText))

				Expect(store.InsertCalls).To(BeZero())
				Expect(embedder.CallCount()).To(BeZero())
				Expect(vectors.AddCalls).To(BeEmpty())
			},
			Entry("empty", ""),
			Entry("whitespace", "  \n\t "),
		)

		It("fails without writing the index when the store insert fails", func() {
			store.FailInsert = true

			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).To(MatchError(testutils.ErrMockStorage))
			Expect(err).NotTo(MatchError(rag.ErrPartialWrite))
			Expect(embedder.CallCount()).To(BeZero())
			Expect(vectors.AddCalls).To(BeEmpty())
		})

		It("fails when the store returns no note", func() {
			store.NilInsert = true

			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).To(MatchError(rag.ErrNoteNotCreated))
			Expect(embedder.CallCount()).To(BeZero())
		})

		Context("with the surface policy", func() {
			It("keeps the stored note when embedding fails", func() {
				embedder.Fail = true

				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).To(MatchError(rag.ErrPartialWrite))
				Expect(err).To(MatchError(ContainSubstring("mock embedding failure")))
				Expect(store.Count()).To(Equal(1))
				Expect(vectors.AddCalls).To(BeEmpty())
				Expect(publisher.Events).To(BeEmpty())
			})

			It("reports a missing vector", func() {
				embedder.Empty = true

				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).To(MatchError(rag.ErrPartialWrite))
				Expect(err).To(MatchError(rag.ErrNoEmbedding))
			})

			It("keeps the stored note when indexing fails", func() {
				vectors.FailAdd = true

				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).To(MatchError(rag.ErrPartialWrite))
				Expect(err).To(MatchError(testutils.ErrMockVector))
				Expect(store.Count()).To(Equal(1))
				Expect(store.DeleteCalls).To(BeEmpty())
			})
		})

		Context("with the compensate policy", func() {
			BeforeEach(func() {
				policy = rag.PolicyCompensate
			})

			It("deletes the stored note when indexing fails", func() {
				vectors.FailAdd = true

				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).To(MatchError(rag.ErrPartialWrite))
				Expect(store.Count()).To(BeZero())
				Expect(store.DeleteCalls).To(Equal([]int64{1}))
			})

			It("joins compensation failures into the error", func() {
				vectors.FailAdd = true
				store.FailDelete = true

				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).To(MatchError(rag.ErrPartialWrite))
				Expect(err).To(MatchError(testutils.ErrMockStorage))
				Expect(err).To(MatchError(ContainSubstring("compensating add note 1")))
				Expect(store.Count()).To(Equal(1))
			})
		})
	})

	Describe("Ask", func() {
		It("injects an exact-match note as context", func() {
			added, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			answer, err := notebook.Ask(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			Expect(answer.Text).To(Equal("Paris."))
			Expect(answer.Context).To(Equal("Context:\n- " + parisNote))
			Expect(answer.NoteIDs).To(Equal([]int64{added.ID}))
			Expect(answer.Score).To(BeNumerically(">", rag.SimilarityCutoff))
		})

		It("orders context, system prompt, then question", func() {
			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			_, err = notebook.Ask(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			Expect(chatter.Last()).To(Equal([]llm.Message{
				{Role: llm.RoleSystem, Content: "Context:\n- " + parisNote},
				{Role: llm.RoleSystem, Content: rag.SystemPrompt},
				{Role: llm.RoleUser, Content: parisNote},
			}))
		})

		It("retrieves a note for a paraphrased question", func() {
			question := "What is the capital of France?"
			embedder.Embeddings[parisNote] = []float32{1, 0, 0}
			embedder.Embeddings[question] = []float32{0.9, 0.3, 0}

			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			answer, err := notebook.Ask(ctx, question)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(ContainSubstring(parisNote))
		})

		It("answers without context for unrelated questions", func() {
			_, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			answer, err := notebook.Ask(ctx, "How tall is Mount Everest?")
			Expect(err).NotTo(HaveOccurred())

			Expect(answer.Context).To(BeEmpty())
			Expect(answer.NoteIDs).To(BeEmpty())
			Expect(chatter.Last()).To(Equal([]llm.Message{
				{Role: llm.RoleSystem, Content: rag.SystemPrompt},
				{Role: llm.RoleUser, Content: "How tall is Mount Everest?"},
			}))
		})

		DescribeTable("applies the cutoff strictly",
			func(score float32, wantContext bool) {
				_, err := notebook.AddNote(ctx, parisNote)
				Expect(err).NotTo(HaveOccurred())
				vectors.Results = []vector.QueryResult{{Document: vector.Document{ID: "1"}, Score: score}}

				answer, err := notebook.Ask(ctx, "anything")
				Expect(err).NotTo(HaveOccurred())
				Expect(answer.Context != "").To(Equal(wantContext))
			},
			Entry("at the cutoff", float32(0.75), false),
			Entry("just above", float32(0.7501), true),
			Entry("well below", float32(0.2), false),
		)

		It("uses only the top match", func() {
			_, err := notebook.AddNote(ctx, "one")
			Expect(err).NotTo(HaveOccurred())
			_, err = notebook.AddNote(ctx, "two")
			Expect(err).NotTo(HaveOccurred())
			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "2"}, Score: 0.95},
				{Document: vector.Document{ID: "1"}, Score: 0.9},
			}

			answer, err := notebook.Ask(ctx, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(Equal("Context:\n- two"))
		})

		It("asks the default question when none is given", func() {
			answer, err := notebook.Ask(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(answer.Question).To(Equal(rag.DefaultQuestion))
			Expect(embedder.Calls).To(Equal([]string{rag.DefaultQuestion}))
			Expect(chatter.Last()[1]).To(Equal(llm.UserMessage(rag.DefaultQuestion)))
		})

		It("skips context when the matched note no longer exists", func() {
			vectors.Results = []vector.QueryResult{{Document: vector.Document{ID: "99"}, Score: 0.99}}

			answer, err := notebook.Ask(ctx, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(BeEmpty())
			Expect(answer.Score).To(BeZero())
		})

		It("ignores vectors with non-numeric ids", func() {
			vectors.Results = []vector.QueryResult{{Document: vector.Document{ID: "abc"}, Score: 0.99}}

			answer, err := notebook.Ask(ctx, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(BeEmpty())
		})

		DescribeTable("propagates backend failures without retrying",
			func(breakIt func(), wantCalls int) {
				breakIt()
				_, err := notebook.Ask(ctx, "question")
				Expect(err).To(HaveOccurred())
				Expect(embedder.CallCount()).To(Equal(wantCalls))
			},
			Entry("embedding", func() { embedder.Fail = true }, 1),
			Entry("vector query", func() { vectors.FailQuery = true }, 1),
			Entry("chat", func() { chatter.Fail = true }, 1),
		)

		It("propagates note store failures while loading context", func() {
			vectors.Results = []vector.QueryResult{{Document: vector.Document{ID: "1"}, Score: 0.99}}
			store.FailGet = true

			_, err := notebook.Ask(ctx, "question")
			Expect(err).To(MatchError(testutils.ErrMockStorage))
			Expect(chatter.Conversations).To(BeEmpty())
		})

		It("fails when the embedder returns no vector", func() {
			embedder.Empty = true
			_, err := notebook.Ask(ctx, "question")
			Expect(err).To(MatchError(rag.ErrNoEmbedding))
		})

		It("honors a custom cutoff", func() {
			nb, err := rag.New(rag.Config{
				Store: store, Vectors: vectors, Embedder: embedder, Chatter: chatter,
				SimilarityCutoff: 0.95,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = nb.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
			vectors.Results = []vector.QueryResult{{Document: vector.Document{ID: "1"}, Score: 0.9}}

			answer, err := nb.Ask(ctx, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(BeEmpty())
		})
	})

	Describe("DeleteNote", func() {
		It("removes the note from listing and retrieval", func() {
			added, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())

			Expect(notebook.DeleteNote(ctx, added.ID)).To(Succeed())

			notes, err := notebook.ListNotes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(BeEmpty())
			Expect(vectors.Count()).To(BeZero())
			Expect(vectors.DeleteCalls).To(Equal([][]string{{"1"}}))

			answer, err := notebook.Ask(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Context).To(BeEmpty())
		})

		It("is idempotent for unknown ids", func() {
			Expect(notebook.DeleteNote(ctx, 42)).To(Succeed())
			Expect(notebook.DeleteNote(ctx, 42)).To(Succeed())
		})

		It("publishes a deleted event", func() {
			Expect(notebook.DeleteNote(ctx, 7)).To(Succeed())
			Expect(publisher.EventTypes()).To(Equal([]string{eventstream.EventTypeNoteDeleted}))
			Expect(publisher.Events[0].Note.ID).To(Equal(int64(7)))
		})

		It("does not touch the index when the store delete fails", func() {
			store.FailDelete = true

			err := notebook.DeleteNote(ctx, 1)
			Expect(err).To(MatchError(testutils.ErrMockStorage))
			Expect(err).NotTo(MatchError(rag.ErrPartialWrite))
			Expect(vectors.DeleteCalls).To(BeEmpty())
		})

		It("surfaces an index delete failure as a partial write", func() {
			added, err := notebook.AddNote(ctx, parisNote)
			Expect(err).NotTo(HaveOccurred())
			vectors.FailDelete = true

			err = notebook.DeleteNote(ctx, added.ID)
			Expect(err).To(MatchError(rag.ErrPartialWrite))
			Expect(store.Count()).To(BeZero())
			Expect(vectors.Count()).To(Equal(1))
		})
	})

	Describe("ListNotes and GetNote", func() {
		It("returns identical results on repeated reads", func() {
			_, err := notebook.AddNote(ctx, "one")
			Expect(err).NotTo(HaveOccurred())
			_, err = notebook.AddNote(ctx, "two")
			Expect(err).NotTo(HaveOccurred())

			first, err := notebook.ListNotes(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := notebook.ListNotes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(first).To(HaveLen(2))
		})

		It("returns NotFoundError for unknown notes", func() {
			_, err := notebook.GetNote(ctx, 5)
			var nf storage.NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.ID).To(Equal(int64(5)))
		})
	})
})
