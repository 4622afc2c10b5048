package fusion_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/fusion"
)

func TestFusion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fusion Suite")
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

var _ = Describe("Fuse", func() {
	It("returns a unit vector", func() {
		img := []float32{1, 2, 3, 4}
		txt := []float32{4, 3, 2, 1}

		out, err := fusion.Fuse(img, txt, 0.6)
		Expect(err).NotTo(HaveOccurred())
		Expect(norm(out)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("fusing a vector with itself at equal weight yields a unit vector parallel to it", func() {
		a := []float32{3, 0, 4}

		out, err := fusion.Fuse(a, a, 0.5)
		Expect(err).NotTo(HaveOccurred())

		// a has norm 5, so the unit vector is a/5.
		Expect(out[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(out[1]).To(BeNumerically("~", 0.0, 1e-6))
		Expect(out[2]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("weights the image side by imageWeight", func() {
		img := []float32{1, 0}
		txt := []float32{0, 1}

		out, err := fusion.Fuse(img, txt, 1.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0]).To(BeNumerically("~", 1.0, 1e-6))
		Expect(out[1]).To(BeNumerically("~", 0.0, 1e-6))

		out, err = fusion.Fuse(img, txt, 0.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0]).To(BeNumerically("~", 0.0, 1e-6))
		Expect(out[1]).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("returns the zero vector for degenerate input without error", func() {
		zero := []float32{0, 0, 0}

		for _, w := range []float64{0, 0.5, 0.6, 1} {
			out, err := fusion.Fuse(zero, zero, w)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]float32{0, 0, 0}))
		}
	})

	It("rejects mismatched dimensions", func() {
		_, err := fusion.Fuse([]float32{1, 2}, []float32{1, 2, 3}, 0.6)
		Expect(err).To(MatchError(fusion.ErrDimensionMismatch))
	})
})
