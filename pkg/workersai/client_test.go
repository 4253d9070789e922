package workersai_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/workersai"
)

var _ = Describe("Client", func() {
	It("requires credentials", func() {
		_, err := workersai.NewClient(workersai.Config{APIToken: "t"})
		Expect(err).To(MatchError(ContainSubstring("account id is required")))

		_, err = workersai.NewClient(workersai.Config{AccountID: "a"})
		Expect(err).To(MatchError(ContainSubstring("api token is required")))
	})

	It("posts to the account's model run path and unwraps the result", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/accounts/acct/ai/run/@cf/meta/llama"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer tok"))
			_, _ = w.Write([]byte(`{"result":{"response":"hi"},"success":true,"errors":[]}`))
		}))
		defer server.Close()

		c, err := workersai.NewClient(workersai.Config{AccountID: "acct", APIToken: "tok", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		var out struct {
			Response string `json:"response"`
		}
		Expect(c.Run(context.Background(), "@cf/meta/llama", map[string]any{}, &out)).To(Succeed())
		Expect(out.Response).To(Equal("hi"))
	})

	It("reports Cloudflare errors", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"result":null,"success":false,"errors":[{"code":5007,"message":"No such model"}]}`))
		}))
		defer server.Close()

		c, err := workersai.NewClient(workersai.Config{AccountID: "acct", APIToken: "tok", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		err = c.Run(context.Background(), "@cf/nope", map[string]any{}, &struct{}{})
		Expect(err).To(MatchError(ContainSubstring("5007: No such model")))
	})
})
