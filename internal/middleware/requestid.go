package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 上下文中的请求 ID
const RequestIDKey = "request_id"

// 按优先级复用上游代理注入的请求 ID
var requestIDHeaders = []string{"X-Request-Id", "X-Vercel-Id", "Cf-Ray"}

// RequestID 为每个请求确定关联 ID，并在响应头 x-request-id 中回传
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		for _, name := range requestIDHeaders {
			if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// GetRequestID 读取当前请求 ID，未经过 RequestID 中间件时返回空串
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
