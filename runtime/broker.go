// Package runtime owns the in-memory fan-out of posted messages to live
// subscribers. It contains no business rules beyond the persist-then-publish
// ordering contract.
package runtime

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/repositories"
	"log/slog"
	"sync"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// Broker is the process-wide publish/subscribe hub keyed by room id.
//
// Publish is best-effort: a disconnected or saturated subscriber misses the
// event, there is no replay. Durability comes from the message repository
// alone; the broker never publishes a message that was not appended first.
type Broker struct {
	log        *slog.Logger
	registry   *Registry
	messages   repositories.IMessageRepository
	moderator  *moderation.Moderator
	bufferSize int

	mu        sync.Mutex
	roomLocks map[domain.RoomID]*sync.Mutex
}

func NewBroker(log *slog.Logger, registry *Registry,
	messages repositories.IMessageRepository, moderator *moderation.Moderator,
	bufferSize int) *Broker {
	return &Broker{
		log:        log,
		registry:   registry,
		messages:   messages,
		moderator:  moderator,
		bufferSize: bufferSize,
		roomLocks:  make(map[domain.RoomID]*sync.Mutex),
	}
}

// Subscribe registers a new live handle for the room. Multiple handles per
// room, and per user, are allowed; each receives its own copy of every event.
func (b *Broker) Subscribe(roomID domain.RoomID) *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		roomID: roomID,
		events: make(chan domain.Message, b.bufferSize),
		done:   make(chan struct{}),
	}
	sub.cancel = func() { b.registry.Remove(sub) }
	b.registry.Add(sub)
	return sub
}

// PostMessage runs the write path: authentication check, moderation, durable
// append, then publish to every live subscriber of the room.
//
// The append and the publish happen under a per-room lock so each subscriber
// observes messages in exactly the stored order. Delivery itself never blocks:
// a stalled subscriber cannot delay the poster (see Subscriber.deliver).
func (b *Broker) PostMessage(identity domain.Identity, roomID domain.RoomID, content string) (domain.Message, error) {
	if !identity.Authenticated() {
		return domain.Message{}, errors.ErrUnauthenticated
	}

	if b.moderator != nil {
		sanitized, found := b.moderator.Censor(content)
		if len(found) > 0 {
			info := whatlanggo.Detect(content)
			b.log.Warn("Censored words in message",
				"author", identity.Username,
				"room_id", roomID,
				"count", len(found),
				"lang", info.Lang.Iso6391())
		}
		content = sanitized
	}

	lock := b.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	msg, err := b.messages.AppendMessage(roomID, identity.UserID, content)
	if err != nil {
		// No publish on a failed append. The store error goes back untouched.
		return domain.Message{}, err
	}

	for _, sub := range b.registry.ForRoom(roomID) {
		if !sub.deliver(msg) {
			b.log.Debug("Subscriber missed event",
				"room_id", roomID, "position", msg.Position)
		}
	}
	return msg, nil
}

func (b *Broker) roomLock(roomID domain.RoomID) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		b.roomLocks[roomID] = lock
	}
	return lock
}
