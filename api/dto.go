package api

import (
	"time"

	"chat-hub/domain"

	"github.com/samber/lo"
)

type userResponse struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	Rooms        []roomRefResponse `json:"rooms"`
	LastOpenRoom string            `json:"last_open_room,omitempty"`
}

type roomRefResponse struct {
	DisplayName string `json:"room_name"`
	RoomID      string `json:"room_id"`
}

type roomResponse struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Position   uint64    `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Rooms: lo.Map(u.Rooms, func(ref domain.RoomRef, _ int) roomRefResponse {
			return roomRefResponse{DisplayName: ref.DisplayName, RoomID: string(ref.RoomID)}
		}),
		LastOpenRoom: string(u.LastOpenRoom),
	}
}

func toRoomResponse(r domain.Room) roomResponse {
	return roomResponse{ID: string(r.ID), Members: r.Members}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		RoomID:     string(m.RoomID),
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Content:    m.Content,
		Position:   m.Position,
		CreatedAt:  m.CreatedAt,
	}
}
