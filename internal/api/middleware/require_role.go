package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/gin-gonic/gin"
)

// RequireRole runs after JWTAuth. A request without a role is 401, a role
// outside allowed is 403.
func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.UserRole(strings.ToLower(strings.TrimSpace(c.GetString("role"))))
		if role == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "authentication required")
			return
		}
		if !slices.Contains(allowed, role) {
			abort(c, http.StatusForbidden, utils.CodeForbidden, "role "+string(role)+" may not do this")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(models.UserRoleAdmin) }
