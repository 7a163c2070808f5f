package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/repositories"
	"fmt"
)

type IAuthService interface {
	Register(username, password string) (Token, error)
	Login(username, password string) (Token, error)
	ChangePassword(identity domain.Identity, oldPassword, newPassword string) error
	Resolve(credential string) (domain.Identity, bool)
}

type Token string

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// Validate shape and complexity before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hash in the service layer so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(username, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the name is taken
	}

	token, err := s.tokens.Generate(domain.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	userID, hash, err := s.users.GetPasswordHash(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(domain.Identity{UserID: userID, Username: username})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) ChangePassword(identity domain.Identity, oldPassword, newPassword string) error {
	if !identity.Authenticated() {
		return errors.ErrUnauthenticated
	}

	_, hash, err := s.users.GetPasswordHash(identity.Username)
	if err != nil {
		return err
	}
	match, err := auth.ComparePassword(oldPassword, hash)
	if err != nil || !match {
		return errors.ErrInvalidCredentials
	}

	if err := auth.ValidateRegister(auth.RegisterRequest{
		Username: identity.Username,
		Password: newPassword,
	}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	return s.users.UpdatePassword(identity.UserID, newHash)
}

// Resolve implements the credential contract consumed by the API middleware:
// ok=false means the call proceeds unauthenticated.
func (s *AuthService) Resolve(credential string) (domain.Identity, bool) {
	identity, err := s.tokens.Verify(credential)
	if err != nil {
		return domain.Identity{}, false
	}
	return identity, true
}
