package authevents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	var b Broadcaster

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(domainauth.Event{Kind: domainauth.EventSignedIn})

	ev := <-ch1
	assert.Equal(t, domainauth.EventSignedIn, ev.Kind)
	ev = <-ch2
	assert.Equal(t, domainauth.EventSignedIn, ev.Kind)
}

func TestBroadcasterCancelStopsDelivery(t *testing.T) {
	var b Broadcaster

	ch, cancel := b.Subscribe()
	cancel()

	// Channel is closed after cancel.
	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	b.Publish(domainauth.Event{Kind: domainauth.EventSignedOut})

	// Cancel is idempotent.
	cancel()
}

func TestBroadcasterDoesNotBlockOnSlowSubscriber(t *testing.T) {
	var b Broadcaster

	ch, cancel := b.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; publishes must not block.
	for range 100 {
		b.Publish(domainauth.Event{Kind: domainauth.EventTokenRefreshed})
	}

	// The subscriber still sees the buffered prefix.
	ev := <-ch
	require.Equal(t, domainauth.EventTokenRefreshed, ev.Kind)
}

func TestBroadcasterClose(t *testing.T) {
	var b Broadcaster

	ch, _ := b.Subscribe()
	b.Close()

	_, open := <-ch
	assert.False(t, open)

	// Subscribing after close yields a closed channel.
	ch2, cancel2 := b.Subscribe()
	_, open = <-ch2
	assert.False(t, open)
	cancel2()
}
