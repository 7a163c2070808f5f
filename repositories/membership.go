package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMembershipRepository interface {
	JoinRoom(userID string, roomID domain.RoomID, displayName string) (domain.User, error)
	CreateRoomForUser(userID, displayName string) (domain.Room, domain.User, error)
	Rename(userID string, roomID domain.RoomID, newName string) (domain.User, error)
	Leave(userID string, roomID domain.RoomID) (domain.User, error)
}

// MembershipRepository owns the user<->room relation. Every mutation touches
// the user document and the room document inside one badger transaction, so
// the two sides can never be observed out of lockstep.
type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// JoinRoom adds the user to the room's member set and appends the
// {displayName, roomID} edge to the user's room list, atomically.
func (m *MembershipRepository) JoinRoom(userID string, roomID domain.RoomID, displayName string) (domain.User, error) {
	var user userDoc
	err := m.db.Update(func(txn *badger.Txn) error {
		var room roomDoc
		if err := getDoc(txn, roomKey(roomID), &room); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		if err := getDoc(txn, userKey(userID), &user); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrUserNotFound
			}
			return err
		}

		d := toRoom(room)
		d.AddMember(userID)
		room.Members = d.Members

		attachRoomRef(&user, roomRefDoc{DisplayName: displayName, RoomID: roomID})

		if err := setDoc(txn, roomKey(roomID), room); err != nil {
			return err
		}
		return setDoc(txn, userKey(userID), user)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrRoomNotFound)
	}
	return toUser(user), nil
}

// CreateRoomForUser creates a room with the user as sole member and records
// the creator's chosen display name on their room list, in one transaction.
func (m *MembershipRepository) CreateRoomForUser(userID, displayName string) (domain.Room, domain.User, error) {
	room := roomDoc{
		ID:        domain.RoomID(uuid.NewString()),
		Members:   []string{userID},
		CreatedAt: time.Now().UTC().UnixNano(),
	}
	var user userDoc
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := getDoc(txn, userKey(userID), &user); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrUserNotFound
			}
			return err
		}
		attachRoomRef(&user, roomRefDoc{DisplayName: displayName, RoomID: room.ID})

		if err := setDoc(txn, roomKey(room.ID), room); err != nil {
			return err
		}
		return setDoc(txn, userKey(userID), user)
	})
	if err != nil {
		return domain.Room{}, domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toRoom(room), toUser(user), nil
}

// Rename updates the caller's own display name for the room. Other members'
// labels are untouched; a room has no canonical name.
func (m *MembershipRepository) Rename(userID string, roomID domain.RoomID, newName string) (domain.User, error) {
	var user userDoc
	err := m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(roomKey(roomID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		if err := getDoc(txn, userKey(userID), &user); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrUserNotFound
			}
			return err
		}
		renamed := false
		for i := range user.Rooms {
			if user.Rooms[i].RoomID == roomID {
				user.Rooms[i].DisplayName = newName
				renamed = true
				break
			}
		}
		if !renamed {
			return errors.ErrMembershipNotFound
		}
		return setDoc(txn, userKey(userID), user)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(user), nil
}

// Leave detaches the room from the acting user only: the edge disappears from
// the user's room list and the user's id from the room's member set. The room
// record and its message log stay intact for the remaining members.
func (m *MembershipRepository) Leave(userID string, roomID domain.RoomID) (domain.User, error) {
	var user userDoc
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := getDoc(txn, userKey(userID), &user); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrUserNotFound
			}
			return err
		}
		if !detachRoomRef(&user, roomID) {
			return errors.ErrMembershipNotFound
		}

		var room roomDoc
		if err := getDoc(txn, roomKey(roomID), &room); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		room.Members = removeMember(room.Members, userID)

		if err := setDoc(txn, roomKey(roomID), room); err != nil {
			return err
		}
		return setDoc(txn, userKey(userID), user)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(user), nil
}

func attachRoomRef(doc *userDoc, ref roomRefDoc) {
	for i := range doc.Rooms {
		if doc.Rooms[i].RoomID == ref.RoomID {
			doc.Rooms[i].DisplayName = ref.DisplayName
			return
		}
	}
	doc.Rooms = append(doc.Rooms, ref)
}

func detachRoomRef(doc *userDoc, roomID domain.RoomID) bool {
	for i, ref := range doc.Rooms {
		if ref.RoomID == roomID {
			doc.Rooms = append(doc.Rooms[:i], doc.Rooms[i+1:]...)
			if doc.LastOpenRoom == roomID {
				doc.LastOpenRoom = ""
			}
			return true
		}
	}
	return false
}

func removeMember(members []string, userID string) []string {
	for i, m := range members {
		if m == userID {
			return append(members[:i], members[i+1:]...)
		}
	}
	return members
}
