package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkspot/internal/pkg/response"
)

// RequireRole lets the request through when the authenticated role is one
// of roles. Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "Role not found in token")
			return
		}

		if !allowed[role] {
			response.AbortError(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole("admin")
}
