package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	for _, id := range []string{"first", "second", "third"} {
		id := id
		bus.Subscribe(IdeaCreated, id, func(ctx context.Context, p Payload) error {
			order = append(order, id)
			return nil
		})
	}

	errs := bus.Publish(context.Background(), IdeaCreatedPayload{
		IdeaID: "i-1", Title: "Better onboarding", AuthorID: "u-1",
	})

	require.Empty(t, errs)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBusDuplicateSubscriptionIgnored(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	fn := func(ctx context.Context, p Payload) error {
		calls++
		return nil
	}
	bus.Subscribe(IdeaArchived, "enqueue_surfacing_idea_archived", fn)
	bus.Subscribe(IdeaArchived, "enqueue_surfacing_idea_archived", fn)

	assert.Equal(t, []string{"enqueue_surfacing_idea_archived"}, bus.HandlerIDs(IdeaArchived))

	bus.Publish(context.Background(), IdeaArchivedPayload{IdeaID: "i-1"})
	assert.Equal(t, 1, calls)
}

func TestBusHandlerFailureDoesNotBlockSiblings(t *testing.T) {
	bus := NewBus(nil)

	var ran []string
	bus.Subscribe(SummaryCreated, "broken", func(ctx context.Context, p Payload) error {
		ran = append(ran, "broken")
		return errors.New("embedding service down")
	})
	bus.Subscribe(SummaryCreated, "healthy", func(ctx context.Context, p Payload) error {
		ran = append(ran, "healthy")
		return nil
	})

	errs := bus.Publish(context.Background(), SummaryCreatedPayload{
		SummaryID: "s-1", IdeaID: "i-1", Content: "short pitch",
	})

	assert.Equal(t, []string{"broken", "healthy"}, ran)
	require.Len(t, errs, 1)

	var he *HandlerError
	require.ErrorAs(t, errs[0], &he)
	assert.Equal(t, SummaryCreated, he.Event)
	assert.Equal(t, "broken", he.HandlerID)
	assert.True(t, IsHandlerError(errs[0]))
}

func TestBusRecoversHandlerPanic(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(ObjectiveRetired, "panicky", func(ctx context.Context, p Payload) error {
		panic("nil map write")
	})
	bus.Subscribe(ObjectiveRetired, "after", func(ctx context.Context, p Payload) error {
		return nil
	})

	errs := bus.Publish(context.Background(), ObjectiveRetiredPayload{ObjectiveID: "o-1"})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "panic")
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	errs := bus.Publish(context.Background(), SessionEndedPayload{SessionID: "sess-1", UserID: "u-1"})
	assert.Empty(t, errs)
}
