package api

import (
	"strings"

	"chat-hub/contract"
	"chat-hub/domain"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Identity resolves the Bearer credential once per request and stashes the
// resulting identity in the request locals. Requests without a valid token
// proceed unauthenticated; each operation decides whether that is acceptable.
func Identity(resolver contract.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token != "" {
			if identity, ok := resolver.Resolve(token); ok {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

// identityFrom returns the resolved identity for this request, or the zero
// (unauthenticated) identity.
func identityFrom(c *fiber.Ctx) domain.Identity {
	if identity, ok := c.Locals(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Identity{}
}
