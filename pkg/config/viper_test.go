package config_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragnotes/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("api.listen")).To(Equal(defaults.API.Listen))
		Expect(v.GetString("client.api_target")).To(Equal(defaults.Client.APITarget))
		Expect(v.GetFloat64("rag.similarity_cutoff")).To(Equal(defaults.RAG.SimilarityCutoff))
		Expect(v.GetBool("mcp.enabled")).To(BeTrue())
	})

	It("reads config file values over defaults", func() {
		writeConfig(tmpDir, `[chat]
provider = "google"
model = "gemini-2.5-flash"
`)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("chat.provider")).To(Equal("google"))
		Expect(v.GetString("chat.model")).To(Equal("gemini-2.5-flash"))
		Expect(v.GetString("embedding.provider")).To(Equal("ollama"))
	})

	It("respects environment variables with RAGNOTES_ prefix", func() {
		Expect(os.Setenv("RAGNOTES_API_LISTEN", ":9999")).To(Succeed())
		DeferCleanup(os.Unsetenv, "RAGNOTES_API_LISTEN")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("api.listen")).To(Equal(":9999"))
	})

	It("env vars take precedence over config file values", func() {
		writeConfig(tmpDir, `[chat]
provider = "anthropic"
`)
		Expect(os.Setenv("RAGNOTES_CHAT_PROVIDER", "openai")).To(Succeed())
		DeferCleanup(os.Unsetenv, "RAGNOTES_CHAT_PROVIDER")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("chat.provider")).To(Equal("openai"))
	})

	It("fails on an unreadable config file", func() {
		writeConfig(tmpDir, `[chat`)

		_, err := config.InitViper(tmpDir)
		Expect(err).To(MatchError(ContainSubstring("reading config")))
	})
})

var _ = Describe("FromViper", func() {
	It("materializes every section", func() {
		tmpDir, err := os.MkdirTemp("", "fromviper-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		writeConfig(tmpDir, `[vector_store]
provider = "pgvector"
target = "postgres://localhost/notes"

[mcp]
enabled = false

[import]
workers = 5
`)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.VectorStore.Provider).To(Equal("pgvector"))
		Expect(cfg.VectorStore.Target).To(Equal("postgres://localhost/notes"))
		Expect(cfg.VectorStore.Collection).To(Equal("notes"))
		Expect(cfg.MCP.Enabled).To(BeFalse())
		Expect(cfg.Import.Workers).To(Equal(uint(5)))
		Expect(cfg.Import.QueueSize).To(Equal(uint(256)))
		Expect(cfg.RAG.SimilarityCutoff).To(Equal(0.75))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bindflag-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("binds cobra flags to viper keys via the registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &listen)

		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPIListen})

		Expect(v.GetString("api.listen")).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		writeConfig(tmpDir, `[api]
listen = ":5555"
`)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPIListen})

		Expect(v.GetString("api.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{"nonexistent"})

		Expect(v.GetString("api.listen")).To(Equal(":8787"))
	})

	It("AddStringFlag pulls name, shorthand and description from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var target string
		config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &target)

		f := cmd.Flags().Lookup("api-target")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("a"))
		Expect(f.Usage).To(Equal("ragnotes API server URL"))
		Expect(f.DefValue).To(Equal("http://localhost:8787"))
	})

	It("AddUintFlag defaults from the config defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var workers uint
		config.AddUintFlag(cmd, config.Flags, config.FlagImportWorkers, &workers)

		f := cmd.Flags().Lookup("workers")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("w"))
		Expect(workers).To(Equal(uint(3)))
	})

	It("ignores keys missing from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var s string
		config.AddStringFlag(cmd, config.FlagSet{}, config.FlagChatModel, &s)
		Expect(cmd.Flags().HasFlags()).To(BeFalse())
	})
})
