package servecmder

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestServeCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Serve Command Suite")
}

var _ = Describe("serve command", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers flags for every configurable concern", func() {
		cmd := NewServeCmd()
		for _, name := range []string{
			"listen",
			"sqlite",
			"vector-store-provider",
			"vector-store-target",
			"vector-store-collection",
			"embedding-provider",
			"embedding-target",
			"embedding-model",
			"embedding-dimensions",
			"top-k",
			"min-score",
			"image-weight",
		} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), "missing flag %q", name)
		}
	})

	It("defaults the listen flag from the default config", func() {
		cmd := NewServeCmd()
		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8081"))
	})

	It("rejects positional arguments", func() {
		cmd := NewServeCmd()
		cmd.SetArgs([]string{"extra"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})
})
