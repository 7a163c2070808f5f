package repositories

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, passwordHash string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
	GetPasswordHash(username string) (userID, hash string, err error)
	UpdatePassword(userID, newHash string) error
	SetLastOpenRoom(userID string, roomID domain.RoomID) (domain.User, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists a new user and its unique-username index entry in one
// transaction, so two concurrent signups with the same name cannot both win.
func (u *UserRepository) CreateUser(username, passwordHash string) (domain.User, error) {
	doc := userDoc{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().UnixNano(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(usernameKey(username))); err == nil {
			return errors.ErrUserAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set([]byte(usernameKey(username)), []byte(doc.ID)); err != nil {
			return err
		}
		return setDoc(txn, userKey(doc.ID), doc)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(doc), nil
}

func (u *UserRepository) GetUserByID(id string) (domain.User, error) {
	var doc userDoc
	err := u.db.View(func(txn *badger.Txn) error {
		return getDoc(txn, userKey(id), &doc)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(doc), nil
}

func (u *UserRepository) GetUserByUsername(username string) (domain.User, error) {
	var doc userDoc
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := resolveUsername(txn, username)
		if err != nil {
			return err
		}
		return getDoc(txn, userKey(id), &doc)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(doc), nil
}

// GetPasswordHash is the login read path. It returns the raw stored hash so
// the caller can run the constant-time comparison.
func (u *UserRepository) GetPasswordHash(username string) (string, string, error) {
	var doc userDoc
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := resolveUsername(txn, username)
		if err != nil {
			return err
		}
		return getDoc(txn, userKey(id), &doc)
	})
	if err != nil {
		return "", "", mapStorageErr(err, errors.ErrUserNotFound)
	}
	return doc.ID, doc.PasswordHash, nil
}

func (u *UserRepository) UpdatePassword(userID, newHash string) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		var doc userDoc
		if err := getDoc(txn, userKey(userID), &doc); err != nil {
			return err
		}
		doc.PasswordHash = newHash
		return setDoc(txn, userKey(userID), doc)
	})
	return mapStorageErr(err, errors.ErrUserNotFound)
}

// SetLastOpenRoom records the room the user last had open. The user must hold
// a membership entry for that room.
func (u *UserRepository) SetLastOpenRoom(userID string, roomID domain.RoomID) (domain.User, error) {
	var doc userDoc
	err := u.db.Update(func(txn *badger.Txn) error {
		if err := getDoc(txn, userKey(userID), &doc); err != nil {
			return err
		}
		if !hasRoomRef(doc, roomID) {
			return errors.ErrMembershipNotFound
		}
		doc.LastOpenRoom = roomID
		return setDoc(txn, userKey(userID), doc)
	})
	if err != nil {
		return domain.User{}, mapStorageErr(err, errors.ErrUserNotFound)
	}
	return toUser(doc), nil
}

func (u *UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc userDoc
			err := it.Item().Value(func(val []byte) error {
				return unmarshalDoc(val, &doc)
			})
			if err != nil {
				return err
			}
			users = append(users, toUser(doc))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func resolveUsername(txn *badger.Txn, username string) (string, error) {
	item, err := txn.Get([]byte(usernameKey(username)))
	if err != nil {
		return "", err
	}
	var id string
	err = item.Value(func(val []byte) error {
		id = string(val)
		return nil
	})
	return id, err
}

func hasRoomRef(doc userDoc, roomID domain.RoomID) bool {
	for _, ref := range doc.Rooms {
		if ref.RoomID == roomID {
			return true
		}
	}
	return false
}

// mapStorageErr converts badger's storage-level failures into the error
// taxonomy callers are allowed to depend on. notFound names the entity the
// lookup was about.
func mapStorageErr(err, notFound error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return notFound
	case badger.ErrConflict:
		return fmt.Errorf("%w: %v", errors.ErrConflict, err)
	default:
		return err
	}
}
