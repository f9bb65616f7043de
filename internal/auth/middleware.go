package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SubjectKey is where the middleware stores the authenticated username in
// the gin context.
const SubjectKey = "auth_subject"

// Middleware rejects requests without a valid session cookie.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		claims, err := s.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired session",
			})
			return
		}

		c.Set(SubjectKey, claims.Sub)
		c.Next()
	}
}
