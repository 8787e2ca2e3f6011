package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/engchi-backend/models"
)

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập
func RequireRoles(auth Authenticator, allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, auth) {
			return
		}

		role := models.UserRole(c.GetString(ctxRole))
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "You do not have permission to access this resource")
	}
}
