package runtime

import (
	"chat-hub/domain"
	"sync"
)

// Registry tracks the live subscriber handles per room. State is transient
// and process-local: nothing here survives a restart, by design.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[string]*Subscriber
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]map[string]*Subscriber)}
}

func (r *Registry) Add(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[sub.roomID]; !ok {
		r.rooms[sub.roomID] = make(map[string]*Subscriber)
	}
	r.rooms[sub.roomID][sub.id] = sub
}

// Remove deletes the handle and drops the room entry once its last subscriber
// is gone, so long-dead rooms don't accumulate in the map.
func (r *Registry) Remove(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.rooms[sub.roomID]
	if !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(r.rooms, sub.roomID)
	}
}

// ForRoom snapshots the room's current subscribers. Publishing works on the
// snapshot so a concurrent Cancel never mutates the set mid-broadcast.
func (r *Registry) ForRoom(roomID domain.RoomID) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Subscriber, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub)
	}
	return out
}

// Count reports the live subscriber count for a room.
func (r *Registry) Count(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Stats reports the number of rooms with at least one live subscriber and the
// total number of live subscribers. Reading the sizes is cheap, so periodic
// sampling never interferes with publishing.
func (r *Registry) Stats() (rooms, subscribers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, subs := range r.rooms {
		subscribers += len(subs)
	}
	return len(r.rooms), subscribers
}
