package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

// AuthMiddleware validates the bearer access token and stores the staff
// member's identity on the context
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		switch {
		case scheme == "":
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		case !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "":
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Set("user_permissions", claims.Permissions)

		c.Next()
	}
}

// RequirePermission lets the request through when the token carries at
// least one of the given permissions
func RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted, _ := c.Get("user_permissions")
		held, ok := granted.([]string)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, p := range permissions {
			if slices.Contains(held, p) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "You do not have permission to perform this action")
		c.Abort()
	}
}
