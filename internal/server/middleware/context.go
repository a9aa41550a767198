package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// localsUserID is the fiber Locals key holding the authenticated user ID.
const localsUserID = "user_id"

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// UserID returns the user ID that RequireAuth stored on the request, or "".
func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals(localsUserID).(string)
	return v
}
