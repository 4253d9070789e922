package ragnotescmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragnotescmder "github.com/papercomputeco/ragnotes/cmd/ragnotes"
)

var _ = Describe("NewRagnotesCmd", func() {
	It("registers every subcommand", func() {
		cmd := ragnotescmder.NewRagnotesCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "ask", "chat", "note", "import", "config", "init", "version"))
	})

	It("has the global flags", func() {
		cmd := ragnotescmder.NewRagnotesCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
