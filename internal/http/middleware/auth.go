package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"conclusio/internal/model"
	"conclusio/internal/service"
	"conclusio/internal/session"
)

const (
	// UserLocalKey holds the authenticated *model.User.
	UserLocalKey = "user"
	// ClaimsLocalKey holds the *session.Claims of the current session.
	ClaimsLocalKey = "session_claims"
)

// Auth resolves the session token from the cookie named cookieName, falling back to an
// Authorization: Bearer header, and rejects the request when it does not authenticate.
// Failures are returned to the app's error handler.
func Auth(auth service.AuthService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c, cookieName)
		if token == "" {
			return service.ErrUnauthenticated
		}
		user, claims, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(UserLocalKey, user)
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// SessionToken returns the raw session token of the request, or "".
func SessionToken(c *fiber.Ctx, cookieName string) string {
	if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
		return v
	}
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserFromCtx returns the user stored by Auth, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// UserIDFromCtx returns the authenticated user id, or "".
func UserIDFromCtx(c *fiber.Ctx) string {
	if u := UserFromCtx(c); u != nil {
		return u.ID
	}
	return ""
}

// ClaimsFromCtx returns the session claims stored by Auth, or nil.
func ClaimsFromCtx(c *fiber.Ctx) *session.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*session.Claims)
	return claims
}
