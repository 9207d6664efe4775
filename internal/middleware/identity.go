package middleware

// identity.go holds the context keys set by JWTAuth and the accessors used
// by handlers and the rate limiter to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's id.  ok is false on routes that
// are not behind JWTAuth.
func UserID(c echo.Context) (id uint64, ok bool) {
	id, ok = c.Get(ctxUserID).(uint64)
	return id, ok
}

// Role returns the authenticated user's role, or "" for anonymous calls.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// userKey is the rate limit identity: the user id, or "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
