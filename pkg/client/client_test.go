package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/api"
	"github.com/papercomputeco/ragnotes/pkg/client"
	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	testutils "github.com/papercomputeco/ragnotes/pkg/utils/test"
)

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		srv     *httptest.Server
		c       *client.Client
		store   *testutils.MockStorageDriver
		vectors *testutils.MockVectorDriver
		chatter *testutils.MockChatter
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStorageDriver()
		vectors = testutils.NewMockVectorDriver()
		chatter = testutils.NewMockChatter("three")

		notebook, err := rag.New(rag.Config{
			Store:    store,
			Vectors:  vectors,
			Embedder: testutils.NewMockEmbedder(),
			Chatter:  chatter,
		})
		Expect(err).NotTo(HaveOccurred())

		server, err := api.NewServer(api.Config{}, notebook, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		srv = httptest.NewServer(server.Handler())
		DeferCleanup(srv.Close)

		c, err = client.New(srv.URL)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects targets without a scheme", func() {
		_, err := client.New("localhost:8787")
		Expect(err).To(MatchError(ContainSubstring("invalid API target URL")))
	})

	It("adds, lists, gets and deletes notes", func() {
		added, err := c.AddNote(ctx, "the cat is named Miso")
		Expect(err).NotTo(HaveOccurred())
		Expect(added.ID).To(Equal(int64(1)))
		Expect(added.Text).To(Equal("the cat is named Miso"))
		Expect(added.Inserted.IDs).To(Equal([]string{"1"}))

		notes, err := c.ListNotes(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(notes).To(HaveLen(1))

		note, err := c.GetNote(ctx, added.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(note.Text).To(Equal("the cat is named Miso"))

		Expect(c.DeleteNote(ctx, added.ID)).To(Succeed())
		Expect(store.Count()).To(Equal(0))
		Expect(vectors.Count()).To(Equal(0))

		_, err = c.GetNote(ctx, added.ID)
		Expect(err).To(MatchError(client.ErrNotFound))
	})

	It("surfaces server validation errors", func() {
		_, err := c.AddNote(ctx, "   ")
		var se *client.StatusError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err.Error()).To(ContainSubstring("HTTP 400"))
		Expect(store.Count()).To(Equal(0))
	})

	It("asks with the note as context", func() {
		_, err := c.AddNote(ctx, "the cat is named Miso")
		Expect(err).NotTo(HaveOccurred())

		answer, err := c.Ask(ctx, "the cat is named Miso")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(Equal("three"))
		Expect(answer.Context).To(Equal("Context:\n- the cat is named Miso"))
		Expect(answer.NoteIDs).To(Equal([]int64{1}))
	})

	It("reports a failed answer", func() {
		chatter.Fail = true
		_, err := c.Ask(ctx, "anything")
		var se *client.StatusError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err.(*client.StatusError).StatusCode).To(Equal(http.StatusInternalServerError))
	})
})
