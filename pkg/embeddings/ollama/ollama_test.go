package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	"github.com/papercomputeco/ragnotes/pkg/embeddings/ollama"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		received map[string]any
		reply    string
		status   int
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		reply = `{"model":"nomic-embed-text","embeddings":[[0.1,0.2],[0.3,0.4]]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("embeds a batch in one request", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		vectors, err := e.Embed(context.Background(), []string{"a", "b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(Equal([][]float32{{0.1, 0.2}, {0.3, 0.4}}))
		Expect(received["model"]).To(Equal(ollama.DefaultEmbeddingModel))
		Expect(received["input"]).To(Equal([]any{"a", "b"}))
		Expect(received["truncate"]).To(BeTrue())
		Expect(received).NotTo(HaveKey("dimensions"))
	})

	It("sends the configured model and dimensions", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    server.URL + "/",
			Model:      "mxbai-embed-large",
			Dimensions: 512,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(context.Background(), []string{"a", "b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(received["model"]).To(Equal("mxbai-embed-large"))
		Expect(received["dimensions"]).To(BeNumerically("==", 512))
	})

	It("makes no request for an empty batch", func() {
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		vectors, err := e.Embed(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(BeNil())
		Expect(received).To(BeNil())
	})

	It("rejects a response with the wrong number of vectors", func() {
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		_, err := e.Embed(context.Background(), []string{"only one"})
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("wraps non-200 responses", func() {
		status = http.StatusInternalServerError
		reply = `{"error":"boom"}`

		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		_, err := embeddings.EmbedOne(context.Background(), e, "a")
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("status 500"))
		Expect(err.Error()).To(HaveSuffix(": boom"))
	})
})
