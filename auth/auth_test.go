package auth

import (
	"strings"
	"testing"
	"time"

	"chat-hub/domain"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyVeryS3cure!Password"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice42", "ComplexPass123!!"}, false},
		{"Username too short", RegisterRequest{"al", "ComplexPass123!!"}, true},
		{"Username not alphanumeric", RegisterRequest{"alice!42", "ComplexPass123!!"}, true},
		{"Password too short", RegisterRequest{"alice42", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"alice42", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"alice42", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"alice42", "nouppercase123!!"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice42", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestToken_Roundtrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret-key", time.Hour)

	identity := domain.Identity{UserID: "user-1", Username: "alice"}
	token, err := manager.Generate(identity)
	req.NoError(err)
	req.NotEmpty(token)

	parsed, err := manager.Verify(token)
	req.NoError(err)
	req.Equal(identity, parsed)
}

func TestToken_Rejections(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret-key", time.Hour)

	_, err := manager.Verify("garbage")
	req.Error(err)

	// Token signed with a different key.
	other := NewTokenManager("another-secret-key", time.Hour)
	token, err := other.Generate(domain.Identity{UserID: "user-1", Username: "alice"})
	req.NoError(err)

	_, err = manager.Verify(token)
	req.Error(err)
}

func TestToken_Expiry(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret-key", -time.Minute)

	token, err := manager.Generate(domain.Identity{UserID: "user-1", Username: "alice"})
	req.NoError(err)

	_, err = manager.Verify(token)
	req.Error(err)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
