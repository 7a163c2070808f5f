package domain

type RoomID string

// Room is a multi-member conversation channel. A room has no canonical name:
// each member labels it independently through the RoomRef on their own user
// record. The ordered message log lives in the message store, keyed by room.
type Room struct {
	ID      RoomID
	Members []string
}

func NewRoom(id RoomID, creatorID string) Room {
	return Room{ID: id, Members: []string{creatorID}}
}

func (r Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember unions the member set with userID. Adding an existing member is a
// no-op, which makes join retries safe.
func (r *Room) AddMember(userID string) {
	if r.HasMember(userID) {
		return
	}
	r.Members = append(r.Members, userID)
}
