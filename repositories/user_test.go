package repositories

import (
	"testing"

	"chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Fetch_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	created, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal("alice", created.Username)
	req.Empty(created.Rooms)

	byID, err := repository.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created.ID, byID.ID)

	byName, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(created.ID, byName.ID)
}

func Test_Create_User_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	_, err := repository.GetUserByID("nope")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetUserByUsername("nope")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_Password_Hash_Roundtrip(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	created, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)

	id, hash, err := repository.GetPasswordHash("alice")
	req.NoError(err)
	req.Equal(created.ID, id)
	req.Equal("hash-1", hash)

	req.NoError(repository.UpdatePassword(created.ID, "hash-2"))

	_, hash, err = repository.GetPasswordHash("alice")
	req.NoError(err)
	req.Equal("hash-2", hash)
}

func Test_Set_Last_Open_Room_Requires_Membership(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash-1")
	req.NoError(err)

	_, err = users.SetLastOpenRoom(alice.ID, "ghost-room")
	req.ErrorIs(err, errors.ErrMembershipNotFound)

	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)

	updated, err := users.SetLastOpenRoom(alice.ID, room.ID)
	req.NoError(err)
	req.Equal(room.ID, updated.LastOpenRoom)
}

func Test_List_Users(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)

	for _, name := range []string{"alice", "bob", "clara"} {
		_, err := repository.CreateUser(name, "hash")
		req.NoError(err)
	}

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 3)
}
