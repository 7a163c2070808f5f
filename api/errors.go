package api

import (
	stderrors "errors"

	"chat-hub/errors"

	"github.com/gofiber/fiber/v2"
)

// fail maps the service error taxonomy onto HTTP statuses. Errors outside the
// taxonomy become a 500 without leaking internals to the client.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case stderrors.Is(err, errors.ErrUnauthenticated),
		stderrors.Is(err, errors.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case stderrors.Is(err, errors.ErrRoomNotFound),
		stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrMembershipNotFound):
		status = fiber.StatusNotFound
	case stderrors.Is(err, errors.ErrUserAlreadyExists),
		stderrors.Is(err, errors.ErrConflict):
		status = fiber.StatusConflict
	case stderrors.Is(err, errors.ErrInvalidPassword):
		status = fiber.StatusBadRequest
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
