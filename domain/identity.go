package domain

// Identity is the resolved caller identity for one inbound call.
// It is always passed explicitly; operations never read it from ambient state.
// The zero value means the call is unauthenticated.
type Identity struct {
	UserID   string
	Username string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}
