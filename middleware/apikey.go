package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
)

const adminActorID = "admin-api-key"

// ValidateAPIKey guards the admin surface. A valid X-API-KEY acts as an
// admin.
func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Set(ctxUserID, adminActorID)
		c.Set(ctxRole, models.RoleAdmin)
		c.Next()
	}
}
