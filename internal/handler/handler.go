package handler

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Error string `json:"error" example:"QR code not found or inactive."`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// firstQuery 返回第一个非空的查询参数
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
