package utils

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUtils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Utils Suite")
}

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("counts runes, not bytes", func() {
		// Each kanji is 3 bytes; byte slicing at 2 would split the
		// second character.
		Expect(Truncate("地震警報あり", 2)).To(Equal("地震..."))
		Expect(Truncate("地震", 2)).To(Equal("地震"))
	})

	It("returns empty output for a non-positive limit", func() {
		Expect(Truncate("anything", 0)).To(Equal(""))
		Expect(Truncate("anything", -1)).To(Equal(""))
	})
})
