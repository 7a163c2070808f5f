// Package repositories persists users, rooms and messages in BadgerDB.
//
// Key layout:
//
//	user:<id>            JSON user document (room list, last open room)
//	uname:<username>     unique-username index -> user id
//	room:<id>            JSON room document (member set)
//	seq:<room id>        per-room append counter
//	msg:<room id>:<pos>  JSON message record, pos zero-padded to 12 digits
//
// The padded position keeps a room's messages in append order under a plain
// prefix scan, so the ordered message log never needs a separate index.
package repositories

import (
	"encoding/json"
	"time"

	"chat-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix     = "user:"
	usernamePrefix = "uname:"
	roomPrefix     = "room:"
	seqPrefix      = "seq:"
	msgPrefix      = "msg:"
)

// userDoc is the stored form of a user. The password hash never leaves the
// repository/auth layers; domain.User does not carry it.
type userDoc struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"password_hash"`
	Rooms        []roomRefDoc  `json:"rooms"`
	LastOpenRoom domain.RoomID `json:"last_open_room,omitempty"`
	CreatedAt    int64         `json:"created_at"`
}

type roomRefDoc struct {
	DisplayName string        `json:"room_name"`
	RoomID      domain.RoomID `json:"room_id"`
}

type roomDoc struct {
	ID        domain.RoomID `json:"id"`
	Members   []string      `json:"members"`
	CreatedAt int64         `json:"created_at"`
}

type messageDoc struct {
	ID       uuid.UUID     `json:"id"`
	RoomID   domain.RoomID `json:"room_id"`
	AuthorID string        `json:"author_id"`
	Content  string        `json:"content"`
	Position uint64        `json:"position"`
	At       int64         `json:"at"`
}

func toUser(doc userDoc) domain.User {
	rooms := make([]domain.RoomRef, 0, len(doc.Rooms))
	for _, ref := range doc.Rooms {
		rooms = append(rooms, domain.RoomRef{DisplayName: ref.DisplayName, RoomID: ref.RoomID})
	}
	return domain.User{
		ID:           doc.ID,
		Username:     doc.Username,
		Rooms:        rooms,
		LastOpenRoom: doc.LastOpenRoom,
		CreatedAt:    time.Unix(0, doc.CreatedAt).UTC(),
	}
}

func fromUser(u domain.User, passwordHash string) userDoc {
	rooms := make([]roomRefDoc, 0, len(u.Rooms))
	for _, ref := range u.Rooms {
		rooms = append(rooms, roomRefDoc{DisplayName: ref.DisplayName, RoomID: ref.RoomID})
	}
	return userDoc{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: passwordHash,
		Rooms:        rooms,
		LastOpenRoom: u.LastOpenRoom,
		CreatedAt:    u.CreatedAt.UnixNano(),
	}
}

func toRoom(doc roomDoc) domain.Room {
	return domain.Room{ID: doc.ID, Members: doc.Members}
}

func unmarshalDoc(val []byte, out any) error {
	return json.Unmarshal(val, out)
}

func getDoc(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setDoc(txn *badger.Txn, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func userKey(id string) string            { return userPrefix + id }
func usernameKey(name string) string      { return usernamePrefix + name }
func roomKey(id domain.RoomID) string     { return roomPrefix + string(id) }
func seqKey(id domain.RoomID) string      { return seqPrefix + string(id) }
func msgRoomPrefix(id domain.RoomID) string { return msgPrefix + string(id) + ":" }
