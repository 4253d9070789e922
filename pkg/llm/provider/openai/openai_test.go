package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/openai"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4.1-mini",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "The answer is 3."},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

var _ = Describe("Chatter", func() {
	var (
		server   *httptest.Server
		received map[string]any
		status   int
		calls    int
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		calls = 0

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status == http.StatusOK {
				_, _ = w.Write([]byte(completionBody))
				return
			}
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an API key", func() {
		_, err := openai.New(openai.Config{})
		Expect(err).To(MatchError(ContainSubstring("missing api key")))
	})

	It("sends system and user messages in order", func() {
		c, err := openai.New(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		answer, err := c.Chat(context.Background(), []llm.Message{
			llm.SystemMessage("Context:\n- nine"),
			llm.SystemMessage("prompt"),
			llm.UserMessage("question"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("The answer is 3."))

		Expect(received["model"]).To(Equal(openai.DefaultChatModel))
		msgs := received["messages"].([]any)
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0]).To(HaveKeyWithValue("role", "system"))
		Expect(msgs[1]).To(HaveKeyWithValue("role", "system"))
		Expect(msgs[2]).To(HaveKeyWithValue("role", "user"))
	})

	It("fails without retrying on a server error", func() {
		status = http.StatusInternalServerError

		c, err := openai.New(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.Chat(context.Background(), []llm.Message{llm.UserMessage("q")})
		Expect(err).To(MatchError(llm.ErrChat))
		Expect(calls).To(Equal(1))
	})
})
