// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable entry in a room's append-only log. Position is the
// gapless per-room sequence number assigned by the message store.
type Message struct {
	ID         uuid.UUID
	RoomID     RoomID
	AuthorID   string
	AuthorName string
	Content    string
	Position   uint64
	CreatedAt  time.Time
}
