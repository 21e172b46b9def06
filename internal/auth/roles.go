package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin reports whether claims carry the administrator flag. It trusts
// the gate's verification for the current request and never re-checks the token.
func RequireAdmin(claims *Claims) bool {
	return claims != nil && claims.IsAdmin
}

// IsSelfOrAdmin reports whether the caller is userID or an administrator.
func IsSelfOrAdmin(claims *Claims, userID string) bool {
	if claims == nil {
		return false
	}
	return claims.IsAdmin || claims.UserID == userID
}

// AdminOnly rejects requests whose attached claims lack the admin flag,
// including exempt requests that carry no claims at all.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, _ := ClaimsFromContext(c)
		if !RequireAdmin(claims) {
			return AsDomainError(ErrInsufficientPrivilege)
		}
		return c.Next()
	}
}

// Authenticated rejects requests that reached the handler without claims,
// which only happens on exempt routes.
func Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFromContext(c); !ok {
			return AsDomainError(ErrNoToken)
		}
		return c.Next()
	}
}
