package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// ValidateToken checks the JWT in the Authorization header and puts the
// caller's user_id and role on the gin context. A "Bearer " prefix is
// optional.
func ValidateToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid token signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = string(models.RoleUser)
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, models.Role(role))
		c.Next()
	}
}

// ActorFrom returns who is calling, as set by ValidateToken or
// ValidateAPIKey.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		return models.Actor{}, false
	}
	role, _ := c.Get(ctxRole)
	r, _ := role.(models.Role)
	return models.Actor{UserID: userID, Role: r}, true
}
