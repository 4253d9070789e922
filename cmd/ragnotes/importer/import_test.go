package importcmder

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/importer"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	testutils "github.com/papercomputeco/ragnotes/pkg/utils/test"
)

var _ = Describe("import command", func() {
	var (
		tmpDir   string
		store    *testutils.MockStorageDriver
		embedder *testutils.MockEmbedder
		closed   bool
		gotCfg   *config.Config
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "import-cmd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		store = testutils.NewMockStorageDriver()
		embedder = testutils.NewMockEmbedder()
		closed = false
		gotCfg = nil
	})

	factory := func(_ context.Context, cfg *config.Config, _ string, _ *slog.Logger) (importer.NoteAdder, func() error, error) {
		gotCfg = cfg
		notebook, err := rag.New(rag.Config{
			Store:    store,
			Vectors:  testutils.NewMockVectorDriver(),
			Embedder: embedder,
			Chatter:  testutils.NewMockChatter("unused"),
		})
		if err != nil {
			return nil, nil, err
		}
		return notebook, func() error { closed = true; return nil }, nil
	}

	run := func(ctx context.Context, args ...string) (string, error) {
		cmd := newImportCmd(factory)
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().Bool("debug", false, "")
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"--config-dir", tmpDir}, args...))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	write := func(name, text string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(text), 0o600)).To(Succeed())
		return path
	}

	It("imports every supported file in a directory", func() {
		write("a.md", "buy milk")
		write("b.txt", "call the plumber")
		write("skip.json", `{"not": "a note"}`)

		out, err := run(context.Background(), tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Imported"))
		Expect(out).To(ContainSubstring("2"))
		Expect(store.Count()).To(Equal(2))
		Expect(closed).To(BeTrue())
	})

	It("takes the worker count from the flag", func() {
		path := write("a.md", "buy milk")

		_, err := run(context.Background(), "--workers", "7", path)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotCfg.Import.Workers).To(Equal(uint(7)))
	})

	It("reports failed notes", func() {
		path := write("a.md", "buy milk")
		embedder.Fail = true

		out, err := run(context.Background(), path)
		Expect(err).To(MatchError(ContainSubstring("1 notes failed to import")))
		Expect(out).To(ContainSubstring("(1 failed)"))
	})

	It("fails on a missing path but still imports the rest", func() {
		path := write("a.md", "buy milk")

		_, err := run(context.Background(), path, filepath.Join(tmpDir, "missing.md"))
		Expect(err).To(HaveOccurred())
		Expect(store.Count()).To(Equal(1))
	})

	It("requires paths or --watch", func() {
		_, err := run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("nothing to import")))
	})

	It("watches until the context is cancelled", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		out, err := run(ctx, "--watch", tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Watching"))
		Expect(closed).To(BeTrue())
	})
})
