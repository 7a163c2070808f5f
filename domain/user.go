package domain

import "time"

// RoomRef is one edge of the user/room relation, carrying the display name the
// user chose for that room.
type RoomRef struct {
	DisplayName string
	RoomID      RoomID
}

// User invariant: every RoomRef in Rooms points to a room whose member set
// contains this user's ID. Both sides mutate together, never independently.
type User struct {
	ID           string
	Username     string
	Rooms        []RoomRef
	LastOpenRoom RoomID
	CreatedAt    time.Time
}

func (u User) RoomRef(roomID RoomID) (RoomRef, bool) {
	for _, ref := range u.Rooms {
		if ref.RoomID == roomID {
			return ref, true
		}
	}
	return RoomRef{}, false
}

// AttachRoom appends a RoomRef, replacing the display name if the edge exists.
func (u *User) AttachRoom(ref RoomRef) {
	for i := range u.Rooms {
		if u.Rooms[i].RoomID == ref.RoomID {
			u.Rooms[i].DisplayName = ref.DisplayName
			return
		}
	}
	u.Rooms = append(u.Rooms, ref)
}

// DetachRoom removes the edge for roomID and reports whether it existed.
func (u *User) DetachRoom(roomID RoomID) bool {
	for i, ref := range u.Rooms {
		if ref.RoomID == roomID {
			u.Rooms = append(u.Rooms[:i], u.Rooms[i+1:]...)
			if u.LastOpenRoom == roomID {
				u.LastOpenRoom = ""
			}
			return true
		}
	}
	return false
}
