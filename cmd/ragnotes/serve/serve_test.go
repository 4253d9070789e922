package servecmder

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragnotes/pkg/config"
)

var _ = Describe("serve command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "serve-test-*")
		Expect(err).NotTo(HaveOccurred())
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("registers every config flag", func() {
		cmd := NewServeCmd()
		for _, key := range serveFlagKeys {
			Expect(cmd.Flags().Lookup(config.Flags[key].Name)).NotTo(BeNil(), key)
		}
		Expect(cmd.Flags().Lookup("mcp")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
	})

	Describe("resolveConfig", func() {
		It("uses defaults when nothing is set", func() {
			cmd := NewServeCmd()
			cfg, err := resolveConfig(cmd, tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":8787"))
			Expect(cfg.MCP.Enabled).To(BeTrue())
		})

		It("prefers flags over the config file", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(`[api]
listen = ":5555"

[chat]
provider = "openai"
`), 0o600)).To(Succeed())

			cmd := NewServeCmd()
			Expect(cmd.Flags().Set("listen", ":6666")).To(Succeed())
			Expect(cmd.Flags().Set("mcp", "false")).To(Succeed())

			cfg, err := resolveConfig(cmd, tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":6666"))
			Expect(cfg.Chat.Provider).To(Equal("openai"))
			Expect(cfg.MCP.Enabled).To(BeFalse())
		})
	})
})
