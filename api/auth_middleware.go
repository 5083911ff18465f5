package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reitclub/arena-booking-backend/identity"
)

// Auth resolves the caller from the Authorization header and stores the user
// in the request context.
func Auth(provider identity.Provider, adminRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

		if len(accessToken) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		member, err := provider.VerifyToken(c.Request.Context(), accessToken)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication"})
			c.Abort()
			return
		}

		c.Set("user", identity.UserFromMember(member, adminRole))
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(identity.User)

		if !user.Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			c.Abort()
			return
		}
	}
}
