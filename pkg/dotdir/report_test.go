package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/dotdir"
)

var _ = Describe("dotdir.Manager last report", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-report-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadLastReport", func() {
		It("returns nil when no report file exists", func() {
			report, err := m.LoadLastReport(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(BeNil())
		})

		It("loads a valid report", func() {
			data := `{"incident_id":7,"description":"flooding near the river","confidence":89.5,"protocol":"flood","analyzed_at":"2026-08-28T10:00:00Z"}`
			err := os.WriteFile(filepath.Join(tmpDir, "last_report.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			report, err := m.LoadLastReport(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(report).NotTo(BeNil())
			Expect(report.IncidentID).To(Equal(int64(7)))
			Expect(report.Confidence).To(Equal(89.5))
			Expect(report.Protocol).To(Equal("flood"))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "last_report.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			report, err := m.LoadLastReport(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(report).To(BeNil())
		})
	})

	Describe("SaveLastReport", func() {
		It("persists a report to disk and loads it back", func() {
			report := &dotdir.LastReport{
				IncidentID:  3,
				Description: "warehouse fire downtown",
				Confidence:  74.2,
				Protocol:    "fire",
				AnalyzedAt:  time.Now().UTC(),
			}

			Expect(m.SaveLastReport(report, tmpDir)).To(Succeed())

			loaded, err := m.LoadLastReport(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.IncidentID).To(Equal(int64(3)))
			Expect(loaded.Protocol).To(Equal("fire"))
		})

		It("returns error for nil report", func() {
			Expect(m.SaveLastReport(nil, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearLastReport", func() {
		It("removes an existing report", func() {
			report := &dotdir.LastReport{IncidentID: 1}
			Expect(m.SaveLastReport(report, tmpDir)).To(Succeed())

			Expect(m.ClearLastReport(tmpDir)).To(Succeed())

			loaded, err := m.LoadLastReport(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("succeeds when no report exists", func() {
			Expect(m.ClearLastReport(tmpDir)).To(Succeed())
		})
	})
})
