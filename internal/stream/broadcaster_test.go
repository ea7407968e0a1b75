package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(Event{Type: "created", Submission: "s1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "created", ev.Type)
		default:
			t.Fatal("expected a buffered event")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	cancel()

	b.Publish(Event{Type: "status_changed"})

	// channel is closed after cancel, so a receive yields the zero value
	ev, open := <-ch
	assert.False(t, open)
	assert.Empty(t, ev.Type)
}

func TestCancelIsIdempotent(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	cancel()
	require.NotPanics(t, cancel)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	// buffer holds 16; everything past that is dropped, not blocked on
	for i := 0; i < 40; i++ {
		b.Publish(Event{Type: "created"})
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 16, delivered)
}
