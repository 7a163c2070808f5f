package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-hub/auth"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repositories.NewUserRepository(db)
	rooms := repositories.NewRoomRepository(db)
	memberships := repositories.NewMembershipRepository(db)
	messages := repositories.NewMessageRepository(db, log, nil)
	broker := runtime.NewBroker(log, runtime.NewRegistry(), messages, nil, 16)

	tokens := auth.NewTokenManager("test-secret-key", time.Hour)
	authService := services.NewAuthService(users, tokens)
	chat := services.NewChatService(users, rooms, memberships, messages, broker)

	handler := NewHandler(log, authService, chat)
	return NewApp(handler, authService)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}
	request := httptest.NewRequest(method, path, payload)
	request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	return response
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(response.Body).Decode(&out))
	_ = response.Body.Close()
	return out
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	response := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
		"username": username,
		"password": "Str0ng&Secret!pass",
	})
	require.Equal(t, fiber.StatusCreated, response.StatusCode)
	body := decodeBody[map[string]string](t, response)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func Test_Register_Login_Me(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	token := registerAndLogin(t, app, "alice")

	response := doJSON(t, app, fiber.MethodGet, "/api/me", token, nil)
	req.Equal(fiber.StatusOK, response.StatusCode)
	me := decodeBody[userResponse](t, response)
	req.Equal("alice", me.Username)
	req.NotEmpty(me.ID)

	response = doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
		"username": "alice",
		"password": "Str0ng&Secret!pass",
	})
	req.Equal(fiber.StatusOK, response.StatusCode)

	response = doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
		"username": "alice",
		"password": "wrong-password",
	})
	req.Equal(fiber.StatusUnauthorized, response.StatusCode)
}

func Test_Room_Lifecycle_Over_HTTP(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	alice := registerAndLogin(t, app, "alice")
	bob := registerAndLogin(t, app, "bob")

	response := doJSON(t, app, fiber.MethodPost, "/api/rooms", alice, fiber.Map{"name": "general"})
	req.Equal(fiber.StatusCreated, response.StatusCode)
	created := decodeBody[struct {
		Room roomResponse `json:"room"`
		User userResponse `json:"user"`
	}](t, response)
	roomID := created.Room.ID
	req.NotEmpty(roomID)
	req.Equal("general", created.User.Rooms[0].DisplayName)

	response = doJSON(t, app, fiber.MethodPost, "/api/rooms/"+roomID+"/join", bob, fiber.Map{"name": "general-for-bob"})
	req.Equal(fiber.StatusOK, response.StatusCode)
	joined := decodeBody[userResponse](t, response)
	req.Equal("general-for-bob", joined.Rooms[0].DisplayName)

	response = doJSON(t, app, fiber.MethodPost, "/api/rooms/"+roomID+"/messages", alice, fiber.Map{"content": "hello bob"})
	req.Equal(fiber.StatusCreated, response.StatusCode)
	posted := decodeBody[messageResponse](t, response)
	req.Equal("alice", posted.AuthorName)
	req.Equal(uint64(0), posted.Position)

	response = doJSON(t, app, fiber.MethodGet, "/api/rooms/"+roomID+"/messages", bob, nil)
	req.Equal(fiber.StatusOK, response.StatusCode)
	history := decodeBody[[]messageResponse](t, response)
	req.Len(history, 1)
	req.Equal("hello bob", history[0].Content)

	response = doJSON(t, app, fiber.MethodPatch, "/api/rooms/"+roomID+"/name", bob, fiber.Map{"name": "the lounge"})
	req.Equal(fiber.StatusOK, response.StatusCode)
	renamed := decodeBody[userResponse](t, response)
	req.Equal("the lounge", renamed.Rooms[0].DisplayName)

	response = doJSON(t, app, fiber.MethodDelete, "/api/rooms/"+roomID, bob, nil)
	req.Equal(fiber.StatusOK, response.StatusCode)
	left := decodeBody[userResponse](t, response)
	req.Empty(left.Rooms)

	response = doJSON(t, app, fiber.MethodGet, "/api/rooms/"+roomID, alice, nil)
	req.Equal(fiber.StatusOK, response.StatusCode)
	room := decodeBody[roomResponse](t, response)
	req.Len(room.Members, 1)
}

func Test_Error_Mapping(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	// Mutations without a token are unauthorized.
	response := doJSON(t, app, fiber.MethodPost, "/api/rooms", "", fiber.Map{"name": "general"})
	req.Equal(fiber.StatusUnauthorized, response.StatusCode)

	token := registerAndLogin(t, app, "alice")

	response = doJSON(t, app, fiber.MethodPost, "/api/rooms/ghost/join", token, fiber.Map{"name": "x"})
	req.Equal(fiber.StatusNotFound, response.StatusCode)

	response = doJSON(t, app, fiber.MethodGet, "/api/users/ghost", token, nil)
	req.Equal(fiber.StatusNotFound, response.StatusCode)

	response = doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
		"username": "alice",
		"password": "Str0ng&Secret!pass",
	})
	req.Equal(fiber.StatusConflict, response.StatusCode)

	response = doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
		"username": "bob",
		"password": "weak",
	})
	req.Equal(fiber.StatusBadRequest, response.StatusCode)

	// Tampered token proceeds unauthenticated, never as another user.
	response = doJSON(t, app, fiber.MethodGet, "/api/me", token+"tampered", nil)
	req.Equal(fiber.StatusUnauthorized, response.StatusCode)
}
