package repositories

import (
	"testing"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/stretchr/testify/require"
)

// requireLockstep asserts the two sides of the user/room relation agree:
// the user references the room iff the room lists the user.
func requireLockstep(t *testing.T, users *UserRepository, rooms *RoomRepository, userID string, roomID domain.RoomID, member bool) {
	t.Helper()
	req := require.New(t)

	user, err := users.GetUserByID(userID)
	req.NoError(err)
	_, hasRef := user.RoomRef(roomID)
	req.Equal(member, hasRef)

	room, err := rooms.GetRoom(roomID)
	req.NoError(err)
	req.Equal(member, room.HasMember(userID))
}

func Test_Create_Room_For_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	rooms := NewRoomRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)

	room, updated, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)
	req.Equal([]string{alice.ID}, room.Members)

	ref, ok := updated.RoomRef(room.ID)
	req.True(ok)
	req.Equal("general", ref.DisplayName)

	requireLockstep(t, users, rooms, alice.ID, room.ID, true)
}

func Test_Join_Room_Updates_Both_Sides(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	rooms := NewRoomRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)

	updated, err := memberships.JoinRoom(bob.ID, room.ID, "general-for-bob")
	req.NoError(err)

	ref, ok := updated.RoomRef(room.ID)
	req.True(ok)
	req.Equal("general-for-bob", ref.DisplayName)

	requireLockstep(t, users, rooms, alice.ID, room.ID, true)
	requireLockstep(t, users, rooms, bob.ID, room.ID, true)
}

func Test_Join_Unknown_Room_Leaves_User_Untouched(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	_, err = memberships.JoinRoom(bob.ID, "ghost", "nowhere")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	fetched, err := users.GetUserByID(bob.ID)
	req.NoError(err)
	req.Empty(fetched.Rooms)
}

func Test_Rename_Only_Touches_Caller(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)
	_, err = memberships.JoinRoom(bob.ID, room.ID, "general")
	req.NoError(err)

	updated, err := memberships.Rename(bob.ID, room.ID, "work-stuff")
	req.NoError(err)
	ref, _ := updated.RoomRef(room.ID)
	req.Equal("work-stuff", ref.DisplayName)

	// Alice's label is untouched
	fetched, err := users.GetUserByID(alice.ID)
	req.NoError(err)
	ref, _ = fetched.RoomRef(room.ID)
	req.Equal("general", ref.DisplayName)
}

func Test_Rename_Errors(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)

	_, err = memberships.Rename(alice.ID, "ghost", "whatever")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	// Bob never joined: the room exists but he holds no membership edge
	_, err = memberships.Rename(bob.ID, room.ID, "whatever")
	req.ErrorIs(err, errors.ErrMembershipNotFound)
}

func Test_Leave_Detaches_Caller_Only(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	rooms := NewRoomRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)
	_, err = memberships.JoinRoom(bob.ID, room.ID, "general")
	req.NoError(err)

	updated, err := memberships.Leave(bob.ID, room.ID)
	req.NoError(err)
	_, hasRef := updated.RoomRef(room.ID)
	req.False(hasRef)

	requireLockstep(t, users, rooms, bob.ID, room.ID, false)
	requireLockstep(t, users, rooms, alice.ID, room.ID, true)

	// The room record itself survives for the remaining member
	fetched, err := rooms.GetRoom(room.ID)
	req.NoError(err)
	req.Equal([]string{alice.ID}, fetched.Members)
}

func Test_Leave_Without_Membership(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	bob, err := users.CreateUser("bob", "hash")
	req.NoError(err)

	_, err = memberships.Leave(bob.ID, "ghost")
	req.ErrorIs(err, errors.ErrMembershipNotFound)
}

func Test_Leave_Clears_Last_Open_Room(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	users := NewUserRepository(db)
	memberships := NewMembershipRepository(db)

	alice, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	room, _, err := memberships.CreateRoomForUser(alice.ID, "general")
	req.NoError(err)
	_, err = users.SetLastOpenRoom(alice.ID, room.ID)
	req.NoError(err)

	updated, err := memberships.Leave(alice.ID, room.ID)
	req.NoError(err)
	req.Empty(updated.LastOpenRoom)
}
