package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		ctx context.Context
		bus *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(logger.Discard())
	})

	It("should deliver synchronously in registration order", func() {
		var order []string
		bus.Subscribe(events.EventTypeSessionChanged, func(_ context.Context, _ events.Event) error {
			order = append(order, "first")
			return nil
		})
		bus.Subscribe(events.EventTypeSessionChanged, func(_ context.Context, e events.Event) error {
			changed, ok := e.(*events.SessionChangedEvent)
			Expect(ok).To(BeTrue())
			order = append(order, string(changed.Reason))
			return nil
		})

		Expect(bus.PublishSync(ctx, events.NewSessionChangedEvent(events.SessionCleared, "u-1"))).To(Succeed())
		Expect(order).To(Equal([]string{"first", "cleared"}))
	})

	It("should stop at the first failing handler", func() {
		boom := errors.New("boom")
		var reached bool
		bus.Subscribe(events.EventTypeEmployeesInvalidated, func(context.Context, events.Event) error { return boom })
		bus.Subscribe(events.EventTypeEmployeesInvalidated, func(context.Context, events.Event) error {
			reached = true
			return nil
		})

		err := bus.PublishSync(ctx, events.NewEmployeesInvalidatedEvent("delete", "e-1"))
		Expect(err).To(MatchError(boom))
		Expect(reached).To(BeFalse())
	})

	It("should stop delivering after unsubscribe", func() {
		var calls int32
		unsubscribe := bus.Subscribe(events.EventTypeSessionChanged, func(context.Context, events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.PublishSync(ctx, events.NewSessionChangedEvent(events.SessionSet, "u-1"))).To(Succeed())
		unsubscribe()
		Expect(bus.PublishSync(ctx, events.NewSessionChangedEvent(events.SessionSet, "u-1"))).To(Succeed())

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
	})

	It("should fan out asynchronously on Publish", func() {
		var calls int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeEmployeesInvalidated, func(context.Context, events.Event) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}

		Expect(bus.Publish(ctx, events.NewEmployeesInvalidatedEvent("create", "e-2"))).To(Succeed())
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(Equal(int32(3)))
	})

	It("should carry the payload on the base event", func() {
		e := events.NewEmployeesInvalidatedEvent("update", "e-3")
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.Payload()).To(HaveKeyWithValue("employee_id", "e-3"))
	})
})
