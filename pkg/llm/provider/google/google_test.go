package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/google"
)

var _ = Describe("Chatter", func() {
	var (
		server   *httptest.Server
		received map[string]any
		path     string
	)

	BeforeEach(func() {
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"candidates": [{"content": {"role": "model", "parts": [{"text": "3"}]}}],
				"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 1}
			}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an API key", func() {
		_, err := google.New(context.Background(), google.Config{})
		Expect(err).To(MatchError(ContainSubstring("missing api key")))
	})

	It("sends system messages as ordered system instruction parts", func() {
		c, err := google.New(context.Background(), google.Config{APIKey: "key", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		answer, err := c.Chat(context.Background(), []llm.Message{
			llm.SystemMessage("Context:\n- nine"),
			llm.SystemMessage("prompt"),
			llm.UserMessage("What is the square root of 9?"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("3"))
		Expect(path).To(HaveSuffix("models/" + google.DefaultChatModel + ":generateContent"))

		instruction := received["systemInstruction"].(map[string]any)
		parts := instruction["parts"].([]any)
		Expect(parts).To(HaveLen(2))
		Expect(parts[0]).To(HaveKeyWithValue("text", "Context:\n- nine"))
		Expect(parts[1]).To(HaveKeyWithValue("text", "prompt"))

		contents := received["contents"].([]any)
		Expect(contents).To(HaveLen(1))
		Expect(contents[0]).To(HaveKeyWithValue("role", "user"))
	})
})
