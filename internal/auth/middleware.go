package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShareMiddleware validates the :token path parameter and exposes the shared
// record id as "recordId" in the gin context.
func ShareMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ParseShareToken(secret, c.Param("token"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Shared summary not found or link expired"})
			return
		}
		c.Set("recordId", claims.RecordID)
		c.Next()
	}
}
