package cmd

import (
	"github.com/frahmantamala/donation-management/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("event publish", func() {
	ginkgo.BeforeEach(func() {
		eventOrderID, eventProgramID, eventAmount, eventStatus = "DONA-9", 3, "25000", "settlement"
	})

	ginkgo.It("builds donation events from the flags", func() {
		event := sampleEvent(events.EventTypeDonationPaid)

		gomega.Expect(event.EventType()).To(gomega.Equal(events.EventTypeDonationPaid))
		gomega.Expect(event.Payload()).To(gomega.HaveKeyWithValue("order_id", "DONA-9"))
		gomega.Expect(event.Payload()).To(gomega.HaveKeyWithValue("program_id", int64(3)))
	})

	ginkgo.It("falls back to a bare event for other types", func() {
		event := sampleEvent("donation.refunded")

		gomega.Expect(event.EventType()).To(gomega.Equal("donation.refunded"))
		gomega.Expect(event.EventID()).NotTo(gomega.BeEmpty())
		gomega.Expect(event.Payload()).To(gomega.HaveKeyWithValue("order_id", "DONA-9"))
	})
})
