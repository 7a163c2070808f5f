package runtime

import (
	"chat-hub/domain"
	"sync"
)

// Subscriber is one client's live interest in a room's future messages.
// Lifecycle: Created -> Active -> Cancelled, nothing else. A cancelled handle
// receives no further events and cannot be reused; re-subscribing requires a
// new handle from Broker.Subscribe.
type Subscriber struct {
	id     string
	roomID domain.RoomID
	events chan domain.Message
	done   chan struct{}
	cancel func()
	once   sync.Once
}

// Events yields the room's messages in append order. The channel is never
// closed; consumers must select on Done as the end-of-stream condition.
func (s *Subscriber) Events() <-chan domain.Message {
	return s.events
}

// Done is closed when the subscription is cancelled.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Cancel removes the handle from the room's live-subscriber set and closes
// Done. Safe to call more than once. Skipping Cancel leaks the handle in the
// registry for the life of the process.
func (s *Subscriber) Cancel() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
}

// deliver hands a message to the subscriber without ever blocking the caller.
// A subscriber whose buffer is full simply misses the event.
func (s *Subscriber) deliver(msg domain.Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- msg:
		return true
	default:
		return false
	}
}
