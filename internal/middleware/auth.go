package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkspot/internal/pkg/jwt"
	"parkspot/internal/pkg/response"
)

// JWTAuth requires a valid bearer token and stores user_id and role on the
// context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeAuthHeaderMissing, "Authorization header is required")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidAuthFormat, "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidToken, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// OptionalJWTAuth lets anonymous guests through. A header that is present
// but invalid is still rejected.
func OptionalJWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	strict := JWTAuth(jwtService)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
