package middleware

import (
	"net/http"
	"strings"

	auth "dynamic-qr-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// UserIDKey 上下文中的当前用户 ID
const UserIDKey = "user_id"

// AuthMiddleware 校验身份提供方签发的 Bearer 令牌，sub 即用户 ID
func AuthMiddleware(jwtManager *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
			return
		}

		// 提取Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
			return
		}

		c.Set(UserIDKey, claims.UserID())
		c.Next()
	}
}

// CurrentUserID 读取认证后的用户 ID
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
