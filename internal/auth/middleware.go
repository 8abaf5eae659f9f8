package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

type Middleware struct {
	jwtService *Service
}

// NewMiddleware returns a middleware that checks bearer tokens against
// jwtService. A nil service lets every request through.
func NewMiddleware(jwtService *Service) *Middleware {
	return &Middleware{
		jwtService: jwtService,
	}
}

// RequireAuth is a middleware that validates JWT tokens
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.jwtService == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(subjectKey, claims.Subject)

		c.Next()
	}
}

// GetSubject returns the authenticated caller, or "" when auth is disabled.
func GetSubject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
