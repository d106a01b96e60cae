package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/donation-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	BeforeEach(func() {
		bus = events.NewEventBus(newTestLogger())
		ctx = context.Background()
	})

	It("delivers events to every subscriber of their type", func() {
		var paid, failed int32
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			atomic.AddInt32(&paid, 1)
			return nil
		})
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			atomic.AddInt32(&paid, 1)
			return nil
		})
		bus.Subscribe(events.EventTypeDonationFailed, func(context.Context, events.Event) error {
			atomic.AddInt32(&failed, 1)
			return nil
		})

		Expect(bus.Publish(ctx, events.NewDonationPaidEvent("DONA-1", 1, "50000", "4000", "qris", "settlement"))).To(Succeed())
		Expect(bus.Wait(ctx)).To(Succeed())

		Expect(atomic.LoadInt32(&paid)).To(Equal(int32(2)))
		Expect(atomic.LoadInt32(&failed)).To(BeZero())
		Expect(bus.HandlerCount(events.EventTypeDonationPaid)).To(Equal(2))
	})

	It("publishes without subscribers", func() {
		Expect(bus.Publish(ctx, events.NewDonationFailedEvent("DONA-1", 1, "50000", "4000", "qris", "expire"))).To(Succeed())
		Expect(bus.HandlerCount(events.EventTypeDonationFailed)).To(BeZero())
	})

	It("survives a panicking handler", func() {
		var called int32
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			panic("handler exploded")
		})
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			atomic.AddInt32(&called, 1)
			return nil
		})

		Expect(bus.Publish(ctx, events.NewDonationPaidEvent("DONA-1", 1, "50000", "4000", "qris", "settlement"))).To(Succeed())
		Expect(bus.Wait(ctx)).To(Succeed())
		Expect(atomic.LoadInt32(&called)).To(Equal(int32(1)))
	})

	It("stops waiting when the context ends", func() {
		release := make(chan struct{})
		defer close(release)
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			<-release
			return nil
		})
		Expect(bus.Publish(ctx, events.NewDonationPaidEvent("DONA-1", 1, "50000", "4000", "qris", "settlement"))).To(Succeed())

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		Expect(bus.Wait(waitCtx)).To(MatchError(context.DeadlineExceeded))
	})

	It("returns the first handler error from PublishSync", func() {
		bus.Subscribe(events.EventTypeDonationNotificationUnrecognized, func(context.Context, events.Event) error {
			return errors.New("sink down")
		})

		err := bus.PublishSync(ctx, events.NewNotificationUnrecognizedEvent("DONA-1", "refund", "pending"))
		Expect(err).To(MatchError(ContainSubstring("sink down")))
	})

	It("reports a panicking handler from PublishSync", func() {
		var after int32
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			panic("handler exploded")
		})
		bus.Subscribe(events.EventTypeDonationPaid, func(context.Context, events.Event) error {
			atomic.AddInt32(&after, 1)
			return nil
		})

		err := bus.PublishSync(ctx, events.NewDonationPaidEvent("DONA-1", 1, "50000", "4000", "qris", "settlement"))
		Expect(err).To(MatchError(ContainSubstring("handler exploded")))
		Expect(atomic.LoadInt32(&after)).To(BeZero())
	})
})

var _ = Describe("Donation events", func() {
	It("carries the donation fields in the payload", func() {
		event := events.NewDonationPaidEvent("DONA-1", 7, "50000", "4000", "bca_va", "settlement")

		Expect(event.EventType()).To(Equal(events.EventTypeDonationPaid))
		Expect(event.EventID()).NotTo(BeEmpty())
		Expect(event.Payload()).To(HaveKeyWithValue("order_id", "DONA-1"))
		Expect(event.Payload()).To(HaveKeyWithValue("program_id", int64(7)))
		Expect(event.OrderID).To(Equal("DONA-1"))
	})

	It("gives each event its own id", func() {
		a := events.NewDonationFailedEvent("DONA-1", 1, "1", "0", "", "expire")
		b := events.NewDonationFailedEvent("DONA-1", 1, "1", "0", "", "expire")
		Expect(a.EventID()).NotTo(Equal(b.EventID()))
	})
})
