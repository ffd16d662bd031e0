package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"main/internal/auth"
)

const (
	// TokenKey and SessionKey are the gin context keys the auth
	// middleware populates for downstream handlers.
	TokenKey   = "access_token"
	SessionKey = "session_data"
)

// Auth protects routes that require a logged-in athlete. It resolves a
// valid access token through the session manager, refreshing an
// expired one on the way, and makes the token and session data
// available on the request context.
func Auth(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, data, err := svc.Token(c.Writer, c.Request)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(TokenKey, token)
		c.Set(SessionKey, data)
		c.Next()
	}
}
