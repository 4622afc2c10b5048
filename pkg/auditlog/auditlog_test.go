package auditlog_test

import (
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/crisis"
)

func TestAuditLog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Log Suite")
}

var _ = Describe("Store", func() {
	var store *auditlog.Store

	BeforeEach(func() {
		store = auditlog.NewStore()
	})

	It("issues monotonically increasing IDs", func() {
		a := store.AppendIncident(nil, "first", crisis.Meta{})
		b := store.AppendIncident(nil, "second", crisis.Meta{})
		c := store.AppendIncident(nil, "third", crisis.Meta{})

		Expect(a).To(Equal(auditlog.IncidentID(1)))
		Expect(b).To(Equal(auditlog.IncidentID(2)))
		Expect(c).To(Equal(auditlog.IncidentID(3)))
	})

	Describe("Snapshot", func() {
		It("returns the most recent incidents in insertion order, most recent last", func() {
			store.AppendIncident(nil, "first", crisis.Meta{})
			store.AppendIncident(nil, "second", crisis.Meta{})
			store.AppendIncident(nil, "third", crisis.Meta{})

			snap := store.Snapshot(2)
			Expect(snap.TotalCount).To(Equal(3))
			Expect(snap.MostRecent).To(HaveLen(2))
			Expect(snap.MostRecent[0].Description).To(Equal("second"))
			Expect(snap.MostRecent[1].Description).To(Equal("third"))
		})

		It("returns everything when limit exceeds the log", func() {
			store.AppendIncident(nil, "only", crisis.Meta{})

			snap := store.Snapshot(10)
			Expect(snap.TotalCount).To(Equal(1))
			Expect(snap.MostRecent).To(HaveLen(1))
		})

		It("returns the count with no incidents for a non-positive limit", func() {
			store.AppendIncident(nil, "a", crisis.Meta{})

			snap := store.Snapshot(0)
			Expect(snap.TotalCount).To(Equal(1))
			Expect(snap.MostRecent).To(BeEmpty())
		})

		It("hands out copies, not references into the log", func() {
			id := store.AppendIncident(nil, "a", crisis.Meta{})
			_, err := store.AppendDecision(id, "q", "d", 80)
			Expect(err).NotTo(HaveOccurred())

			snap := store.Snapshot(1)
			snap.MostRecent[0].Decisions[0].DecisionSummary = "mutated"

			again := store.Snapshot(1)
			Expect(again.MostRecent[0].Decisions[0].DecisionSummary).To(Equal("d"))
		})
	})

	Describe("AppendDecision", func() {
		It("appends to an existing incident", func() {
			id := store.AppendIncident(nil, "a", crisis.Meta{})

			entry, err := store.AppendDecision(id, "query summary", "decision summary", 89.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Confidence).To(Equal(89.5))
			Expect(entry.Timestamp).NotTo(BeZero())

			snap := store.Snapshot(1)
			Expect(snap.MostRecent[0].Decisions).To(HaveLen(1))
		})

		It("fails fast on an unknown incident", func() {
			_, err := store.AppendDecision(auditlog.IncidentID(42), "q", "d", 1)
			Expect(err).To(MatchError(auditlog.ErrUnknownIncident))
		})
	})

	It("serializes concurrent appends and snapshots", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				id := store.AppendIncident(nil, "incident", crisis.Meta{})
				_, _ = store.AppendDecision(id, "q", "d", 50)
			}()
			go func() {
				defer wg.Done()
				_ = store.Snapshot(5)
			}()
		}
		wg.Wait()

		Expect(store.Snapshot(0).TotalCount).To(Equal(50))
	})
})
