package api

import (
	"chat-hub/domain"

	"github.com/gofiber/contrib/websocket"
)

// SubscribeRoom bridges one broker subscription onto a websocket. The handle
// lives exactly as long as the socket: closing either side cancels the other,
// so no subscriber is ever left behind in the registry.
func (h *Handler) SubscribeRoom(c *websocket.Conn) {
	roomID := domain.RoomID(c.Params("id"))
	sub := h.chat.SubscribeToRoom(roomID)
	defer sub.Cancel()

	// Drain reads only to learn about disconnection; clients don't send.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-sub.Done():
			return
		case msg := <-sub.Events():
			if err := c.WriteJSON(toMessageResponse(msg)); err != nil {
				h.log.Debug("Dropping subscriber, write failed",
					"room_id", roomID, "error", err)
				return
			}
		}
	}
}
