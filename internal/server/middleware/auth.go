package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/apperror"
)

const bearerPrefix = "bearer "

// MsgNoToken is returned when a protected route is called without a bearer token.
const MsgNoToken = "No token, authorization denied"

// TokenVerifier resolves a session token to the user ID it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token before they reach the handler.
// On success the user ID is stored in Locals and in the request's user context.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apperror.Auth(MsgNoToken)
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			return err
		}
		c.Locals(localsUserID, userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
