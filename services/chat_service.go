package services

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"chat-hub/runtime"
)

type IChatService interface {
	Me(identity domain.Identity) (domain.User, error)
	GetUser(username string) (domain.User, error)
	ListUsers() ([]domain.User, error)

	GetRoom(roomID domain.RoomID) (domain.Room, error)
	ListRooms() ([]domain.Room, error)
	ListMessages(roomID domain.RoomID) ([]domain.Message, error)

	CreateRoom(identity domain.Identity, displayName string) (domain.Room, domain.User, error)
	JoinRoom(identity domain.Identity, roomID domain.RoomID, displayName string) (domain.User, error)
	RenameRoom(identity domain.Identity, roomID domain.RoomID, newName string) (domain.User, error)
	LeaveRoom(identity domain.Identity, roomID domain.RoomID) (domain.User, error)
	OpenRoom(identity domain.Identity, roomID domain.RoomID) (domain.User, error)

	PostMessage(identity domain.Identity, roomID domain.RoomID, content string) (domain.Message, error)
	SubscribeToRoom(roomID domain.RoomID) *runtime.Subscriber
}

// ChatService is the single entry point for all room, membership and message
// operations. Every mutating call verifies the explicit identity before any
// store access, so an unauthenticated call has zero observable side effects.
type ChatService struct {
	users       repositories.IUserRepository
	rooms       repositories.IRoomRepository
	memberships repositories.IMembershipRepository
	messages    repositories.IMessageRepository
	broker      *runtime.Broker
}

func NewChatService(
	users repositories.IUserRepository,
	rooms repositories.IRoomRepository,
	memberships repositories.IMembershipRepository,
	messages repositories.IMessageRepository,
	broker *runtime.Broker,
) *ChatService {
	return &ChatService{
		users:       users,
		rooms:       rooms,
		memberships: memberships,
		messages:    messages,
		broker:      broker,
	}
}

func (s *ChatService) Me(identity domain.Identity) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return s.users.GetUserByID(identity.UserID)
}

func (s *ChatService) GetUser(username string) (domain.User, error) {
	return s.users.GetUserByUsername(username)
}

func (s *ChatService) ListUsers() ([]domain.User, error) {
	return s.users.ListUsers()
}

func (s *ChatService) GetRoom(roomID domain.RoomID) (domain.Room, error) {
	return s.rooms.GetRoom(roomID)
}

func (s *ChatService) ListRooms() ([]domain.Room, error) {
	return s.rooms.ListRooms()
}

func (s *ChatService) ListMessages(roomID domain.RoomID) ([]domain.Message, error) {
	return s.messages.ListMessages(roomID)
}

// CreateRoom creates a room with the caller as sole member, labeled with the
// caller's chosen display name.
func (s *ChatService) CreateRoom(identity domain.Identity, displayName string) (domain.Room, domain.User, error) {
	if !identity.Authenticated() {
		return domain.Room{}, domain.User{}, errors.ErrUnauthenticated
	}
	return s.memberships.CreateRoomForUser(identity.UserID, displayName)
}

func (s *ChatService) JoinRoom(identity domain.Identity, roomID domain.RoomID, displayName string) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return s.memberships.JoinRoom(identity.UserID, roomID, displayName)
}

func (s *ChatService) RenameRoom(identity domain.Identity, roomID domain.RoomID, newName string) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return s.memberships.Rename(identity.UserID, roomID, newName)
}

func (s *ChatService) LeaveRoom(identity domain.Identity, roomID domain.RoomID) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return s.memberships.Leave(identity.UserID, roomID)
}

func (s *ChatService) OpenRoom(identity domain.Identity, roomID domain.RoomID) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return s.users.SetLastOpenRoom(identity.UserID, roomID)
}

func (s *ChatService) PostMessage(identity domain.Identity, roomID domain.RoomID, content string) (domain.Message, error) {
	return s.broker.PostMessage(identity, roomID, content)
}

func (s *ChatService) SubscribeToRoom(roomID domain.RoomID) *runtime.Subscriber {
	return s.broker.Subscribe(roomID)
}
