package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/services"
	"github.com/vnkhanh/engchi-backend/utils"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxUser   = "user"
	ctxAPIKey = "api_key"
)

type Authenticator interface {
	VerifyAccess(token string) (*utils.Claims, error)
	VerifySetup(token string) (*utils.Claims, error)
	Me(ctx context.Context, id uuid.UUID) (*models.User, error)
	APIKeySource(u *models.User) services.APIKeySource
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	// Cho iOS: thử X-Auth-Token nếu không có Authorization
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate xác thực access token và gắn user vào context; false nếu đã abort.
func authenticate(c *gin.Context, auth Authenticator) bool {
	token, ok := bearerToken(c)
	if !ok {
		abort(c, http.StatusUnauthorized, "Not authorized to access this route")
		return false
	}
	claims, err := auth.VerifyAccess(token)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Not authorized to access this route")
		return false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Not authorized to access this route")
		return false
	}

	// Kiểm tra user còn tồn tại trong DB
	user, err := auth.Me(c.Request.Context(), userID)
	if err != nil {
		abort(c, http.StatusUnauthorized, "User not found")
		return false
	}

	c.Set(ctxUserID, user.ID)
	c.Set(ctxRole, string(user.Role))
	c.Set(ctxUser, user)
	c.Set(ctxAPIKey, auth.APIKeySource(user))
	return true
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, auth) {
			c.Next()
		}
	}
}

// SetupMiddleware chỉ chấp nhận setup token (bước hoàn tất hồ sơ sau khi login Google).
func SetupMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Not authorized: No setup token")
			return
		}
		claims, err := auth.VerifySetup(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized: Invalid setup token")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized: Invalid setup token")
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// UserID trả về id user đã xác thực; uuid.Nil nếu chưa qua middleware.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// APIKey trả về accessor giải mã API key của user trong request hiện tại.
func APIKey(c *gin.Context) services.APIKeySource {
	if v, ok := c.Get(ctxAPIKey); ok {
		if src, ok := v.(services.APIKeySource); ok {
			return src
		}
	}
	return func() (string, error) { return "", models.ErrGraderNotConfigured }
}
