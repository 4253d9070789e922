package notecmder_test

import (
	"bytes"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/api"
	notecmder "github.com/papercomputeco/ragnotes/cmd/ragnotes/note"
	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	testutils "github.com/papercomputeco/ragnotes/pkg/utils/test"
)

var _ = Describe("note command", func() {
	var (
		srv     *httptest.Server
		store   *testutils.MockStorageDriver
		vectors *testutils.MockVectorDriver
	)

	BeforeEach(func() {
		store = testutils.NewMockStorageDriver()
		vectors = testutils.NewMockVectorDriver()

		notebook, err := rag.New(rag.Config{
			Store:    store,
			Vectors:  vectors,
			Embedder: testutils.NewMockEmbedder(),
			Chatter:  testutils.NewMockChatter("ok"),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err := api.NewServer(api.Config{}, notebook, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		srv = httptest.NewServer(server.Handler())
		DeferCleanup(srv.Close)
	})

	run := func(stdin string, args ...string) (string, error) {
		cmd := notecmder.NewNoteCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--api-target", srv.URL))
		err := cmd.Execute()
		return out.String(), err
	}

	It("has add, list, get and rm subcommands", func() {
		cmd := notecmder.NewNoteCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("add", "list", "get", "rm"))
	})

	It("adds a note from arguments", func() {
		out, err := run("", "add", "water", "the", "plants")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Added note"))
		Expect(out).To(ContainSubstring("#1"))
		Expect(store.Count()).To(Equal(1))
		Expect(vectors.Count()).To(Equal(1))
	})

	It("adds a note from stdin", func() {
		_, err := run("standup moved to 10am\n", "add", "-")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("", "get", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("standup moved to 10am"))
	})

	It("refuses empty notes before calling the server", func() {
		_, err := run("   ", "add", "-")
		Expect(err).To(MatchError("note text cannot be empty"))
		Expect(store.InsertCalls).To(BeZero())
	})

	It("lists notes", func() {
		_, err := run("", "add", "first note")
		Expect(err).NotTo(HaveOccurred())
		_, err = run("", "add", "second note")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("first note"))
		Expect(out).To(ContainSubstring("second note"))
	})

	It("says when there are no notes", func() {
		out, err := run("", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No notes yet."))
	})

	It("removes a note and its embedding", func() {
		_, err := run("", "add", "temporary")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("", "rm", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Removed note"))
		Expect(store.Count()).To(Equal(0))
		Expect(vectors.Count()).To(Equal(0))
	})

	It("rejects invalid ids", func() {
		_, err := run("", "rm", "abc")
		Expect(err).To(MatchError(ContainSubstring("invalid note id")))
	})

	It("reports missing notes", func() {
		_, err := run("", "get", "42")
		Expect(err).To(MatchError(ContainSubstring("note not found")))
	})
})
