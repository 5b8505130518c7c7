package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmaaza/surgical-mart-sub001/auth"
)

// RequireAuth rejects requests while no shopper is signed in. The engine
// consumes authentication as a capability; token issuance lives with the
// marketplace auth service.
func RequireAuth(session *auth.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "sign in to continue",
			})
			return
		}
		c.Next()
	}
}
