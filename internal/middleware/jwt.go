package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the token's user id (uint64) and role (string) in the request
// context under "user_id" and "role".  The provided secret must match the
// one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			uid, _ := claims.UserID() // validated by ParseAccessToken

			c.Set(ctxUserID, uid)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
