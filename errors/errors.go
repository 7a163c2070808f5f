package errors

import "fmt"

var (
	ErrUnauthenticated    = fmt.Errorf("not logged in")
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrMembershipNotFound = fmt.Errorf("user has no entry for this room")
	ErrUserAlreadyExists  = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("incorrect credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrConflict           = fmt.Errorf("concurrent update conflict")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
