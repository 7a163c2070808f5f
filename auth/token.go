package auth

import (
	"time"

	"chat-hub/domain"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the opaque credentials handed to clients.
// The rest of the system only ever sees the resolved domain.Identity.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed JWT for a specific user.
func (t *TokenManager) Generate(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-hub",
		},
	}

	// HS256: HMAC with SHA256, signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates the signature and expiration of a JWT string.
func (t *TokenManager) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, jwt.ErrSignatureInvalid
	}
	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
