package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	AppendMessage(roomID domain.RoomID, authorID, content string) (domain.Message, error)
	ListMessages(roomID domain.RoomID) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int

	mu        sync.Mutex
	roomLocks map[domain.RoomID]*sync.Mutex
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{
		db:            db,
		log:           log,
		limitMessages: limitMessages,
		roomLocks:     make(map[domain.RoomID]*sync.Mutex),
	}
}

// AppendMessage creates a message at the room's next sequence position.
//
// The position counter and the message record are written in the same badger
// transaction, and appends to one room serialize on a per-room mutex, so two
// concurrent posts can neither collide on a position nor leave a gap. The key
// is formatted as "msg:{room_id}:{position_padded}" with 12-digit zero padding
// so a prefix scan returns the log in append order.
func (m *MessageRepository) AppendMessage(roomID domain.RoomID, authorID, content string) (domain.Message, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	doc := messageDoc{
		ID:       uuid.New(),
		RoomID:   roomID,
		AuthorID: authorID,
		Content:  content,
		At:       time.Now().UTC().UnixNano(),
	}
	var authorName string

	err := m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(roomKey(roomID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}

		var author userDoc
		if err := getDoc(txn, userKey(authorID), &author); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrUserNotFound
			}
			return err
		}
		authorName = author.Username

		pos, err := nextPosition(txn, roomID)
		if err != nil {
			return err
		}
		doc.Position = pos

		return setDoc(txn, msgKey(roomID, pos), doc)
	})
	if err != nil {
		return domain.Message{}, mapStorageErr(err, errors.ErrRoomNotFound)
	}

	return domain.Message{
		ID:         doc.ID,
		RoomID:     doc.RoomID,
		AuthorID:   doc.AuthorID,
		AuthorName: authorName,
		Content:    doc.Content,
		Position:   doc.Position,
		CreatedAt:  time.Unix(0, doc.At).UTC(),
	}, nil
}

// ListMessages returns the room's log in append order with the author's
// username attached. Usernames are resolved once per author within the same
// read transaction. When a message limit is configured, only the most recent
// messages are returned, still oldest first.
func (m *MessageRepository) ListMessages(roomID domain.RoomID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(roomKey(roomID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}

		var docs []messageDoc
		options := badger.DefaultIteratorOptions
		prefix := []byte(msgRoomPrefix(roomID))
		if m.limitMessages != nil {
			// Walk backwards from the newest key so the limit keeps the tail
			// of the log, then restore append order below.
			options.Reverse = true
			it := txn.NewIterator(options)
			defer it.Close()
			seek := append(append([]byte{}, prefix...), 0xFF)
			for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
				if len(docs) == *m.limitMessages {
					m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
					break
				}
				var doc messageDoc
				if err := it.Item().Value(func(val []byte) error {
					return unmarshalDoc(val, &doc)
				}); err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			reverseDocs(docs)
		} else {
			it := txn.NewIterator(options)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var doc messageDoc
				if err := it.Item().Value(func(val []byte) error {
					return unmarshalDoc(val, &doc)
				}); err != nil {
					return err
				}
				docs = append(docs, doc)
			}
		}

		names := make(map[string]string)
		for _, doc := range docs {
			name, ok := names[doc.AuthorID]
			if !ok {
				var author userDoc
				if err := getDoc(txn, userKey(doc.AuthorID), &author); err != nil && err != badger.ErrKeyNotFound {
					return err
				}
				name = author.Username
				names[doc.AuthorID] = name
			}
			messages = append(messages, domain.Message{
				ID:         doc.ID,
				RoomID:     doc.RoomID,
				AuthorID:   doc.AuthorID,
				AuthorName: name,
				Content:    doc.Content,
				Position:   doc.Position,
				CreatedAt:  time.Unix(0, doc.At).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err, errors.ErrRoomNotFound)
	}
	return messages, nil
}

func (m *MessageRepository) roomLock(roomID domain.RoomID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		m.roomLocks[roomID] = lock
	}
	return lock
}

// nextPosition reads, increments and rewrites the room's append counter inside
// the caller's transaction. Serialized by the per-room lock in AppendMessage.
func nextPosition(txn *badger.Txn, roomID domain.RoomID) (uint64, error) {
	var pos uint64
	item, err := txn.Get([]byte(seqKey(roomID)))
	switch err {
	case nil:
		err = item.Value(func(val []byte) error {
			pos = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	case badger.ErrKeyNotFound:
		pos = 0
	default:
		return 0, err
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, pos+1)
	if err := txn.Set([]byte(seqKey(roomID)), next); err != nil {
		return 0, err
	}
	return pos, nil
}

func msgKey(roomID domain.RoomID, pos uint64) string {
	return fmt.Sprintf("%s%012d", msgRoomPrefix(roomID), pos)
}

func reverseDocs(docs []messageDoc) {
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}
