package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IRoomRepository interface {
	CreateRoom(creatorID string) (domain.Room, error)
	GetRoom(id domain.RoomID) (domain.Room, error)
	ListRooms() ([]domain.Room, error)
	AddMember(roomID domain.RoomID, userID string) (domain.Room, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom persists a new room whose member set contains only the creator.
// Callers that also need the creator's room list updated go through the
// membership repository instead, which does both sides in one transaction.
func (r *RoomRepository) CreateRoom(creatorID string) (domain.Room, error) {
	doc := roomDoc{
		ID:        domain.RoomID(uuid.NewString()),
		Members:   []string{creatorID},
		CreatedAt: time.Now().UTC().UnixNano(),
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return setDoc(txn, roomKey(doc.ID), doc)
	})
	if err != nil {
		return domain.Room{}, mapStorageErr(err, errors.ErrRoomNotFound)
	}
	return toRoom(doc), nil
}

func (r *RoomRepository) GetRoom(id domain.RoomID) (domain.Room, error) {
	var doc roomDoc
	err := r.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, roomKey(id), &doc)
	})
	if err != nil {
		return domain.Room{}, mapStorageErr(err, errors.ErrRoomNotFound)
	}
	return toRoom(doc), nil
}

func (r *RoomRepository) ListRooms() ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(roomPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc roomDoc
			err := it.Item().Value(func(val []byte) error {
				return unmarshalDoc(val, &doc)
			})
			if err != nil {
				return err
			}
			rooms = append(rooms, toRoom(doc))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// AddMember unions the room's member set with userID. Idempotent: adding an
// existing member returns the room unchanged.
func (r *RoomRepository) AddMember(roomID domain.RoomID, userID string) (domain.Room, error) {
	var doc roomDoc
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getDoc(txn, roomKey(roomID), &doc); err != nil {
			return err
		}
		room := toRoom(doc)
		if room.HasMember(userID) {
			return nil
		}
		room.AddMember(userID)
		doc.Members = room.Members
		return setDoc(txn, roomKey(roomID), doc)
	})
	if err != nil {
		return domain.Room{}, mapStorageErr(err, errors.ErrRoomNotFound)
	}
	return toRoom(doc), nil
}
