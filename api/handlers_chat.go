package api

import (
	"log/slog"

	"chat-hub/domain"
	"chat-hub/services"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type Handler struct {
	log  *slog.Logger
	auth services.IAuthService
	chat services.IChatService
}

func NewHandler(log *slog.Logger, auth services.IAuthService, chat services.IChatService) *Handler {
	return &Handler{log: log, auth: auth, chat: chat}
}

type roomNameRequest struct {
	Name string `json:"name"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.chat.Me(identityFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.chat.GetUser(c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.chat.ListUsers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lo.Map(users, func(u domain.User, _ int) userResponse {
		return toUserResponse(u)
	}))
}

func (h *Handler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.chat.ListRooms()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lo.Map(rooms, func(r domain.Room, _ int) roomResponse {
		return toRoomResponse(r)
	}))
}

func (h *Handler) GetRoom(c *fiber.Ctx) error {
	room, err := h.chat.GetRoom(domain.RoomID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toRoomResponse(room))
}

func (h *Handler) CreateRoom(c *fiber.Ctx) error {
	var req roomNameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	room, user, err := h.chat.CreateRoom(identityFrom(c), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"room": toRoomResponse(room),
		"user": toUserResponse(user),
	})
}

func (h *Handler) JoinRoom(c *fiber.Ctx) error {
	var req roomNameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user, err := h.chat.JoinRoom(identityFrom(c), domain.RoomID(c.Params("id")), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) RenameRoom(c *fiber.Ctx) error {
	var req roomNameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user, err := h.chat.RenameRoom(identityFrom(c), domain.RoomID(c.Params("id")), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) LeaveRoom(c *fiber.Ctx) error {
	user, err := h.chat.LeaveRoom(identityFrom(c), domain.RoomID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) OpenRoom(c *fiber.Ctx) error {
	user, err := h.chat.OpenRoom(identityFrom(c), domain.RoomID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	messages, err := h.chat.ListMessages(domain.RoomID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	}))
}

func (h *Handler) PostMessage(c *fiber.Ctx) error {
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	msg, err := h.chat.PostMessage(identityFrom(c), domain.RoomID(c.Params("id")), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(msg))
}
