package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CurrentUserID extracts the authenticated user's ID from the gin context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

// CurrentUserRole extracts the authenticated user's role from the gin context.
func CurrentUserRole(c *gin.Context) string {
	roleInterface, _ := c.Get("user_role")
	role, _ := roleInterface.(string)
	return role
}
