// Package api exposes the chat core over HTTP and websockets.
package api

import (
	"chat-hub/contract"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber application with all routes registered. Constructed
// per instance so tests can spin up isolated servers.
func NewApp(handler *Handler, resolver contract.IdentityResolver) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(Identity(resolver))

	app.Post("/api/register", handler.Register)
	app.Post("/api/login", handler.Login)
	app.Post("/api/password", handler.ChangePassword)

	app.Get("/api/me", handler.Me)
	app.Post("/api/me/open-room/:id", handler.OpenRoom)
	app.Get("/api/users", handler.ListUsers)
	app.Get("/api/users/:username", handler.GetUser)

	app.Get("/api/rooms", handler.ListRooms)
	app.Post("/api/rooms", handler.CreateRoom)
	app.Get("/api/rooms/:id", handler.GetRoom)
	app.Post("/api/rooms/:id/join", handler.JoinRoom)
	app.Patch("/api/rooms/:id/name", handler.RenameRoom)
	app.Delete("/api/rooms/:id", handler.LeaveRoom)

	app.Get("/api/rooms/:id/messages", handler.ListMessages)
	app.Post("/api/rooms/:id/messages", handler.PostMessage)
	app.Get("/api/rooms/:id/subscribe", websocket.New(handler.SubscribeRoom))

	return app
}
