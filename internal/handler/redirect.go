package handler

import (
	"net/http"
	"strconv"

	"dynamic-qr-platform/internal/middleware"
	"dynamic-qr-platform/internal/redirect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedirectHandler 公开的短链跳转
type RedirectHandler struct {
	resolver *redirect.Resolver
	logger   *zap.Logger
}

// NewRedirectHandler 创建跳转处理器
func NewRedirectHandler(resolver *redirect.Resolver, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{resolver: resolver, logger: logger.Named("redirect_handler")}
}

// Redirect godoc
// @Summary 扫码跳转
// @Description 解析 slug 并 302 跳转到目标地址，同时异步记录扫码
// @Tags Redirect
// @Produce  json
// @Param   slug  path  string  true  "短链 slug"
// @Success 302 "跳转到目标地址"
// @Failure 404 {object} ErrorResponse "不存在或已停用"
// @Failure 429 {object} ErrorResponse "请求过于频繁"
// @Failure 500 {object} ErrorResponse "目标地址配置错误"
// @Router /r/{slug} [get]
func (h *RedirectHandler) Redirect(c *gin.Context) {
	d, err := h.resolver.Resolve(c.Request.Context(), redirect.Request{
		Slug:      c.Param("slug"),
		Header:    c.Request.Header,
		RequestID: middleware.GetRequestID(c),
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to resolve QR code.")
		return
	}

	switch d.Outcome {
	case redirect.RateLimited:
		c.Header("Retry-After", strconv.Itoa(d.RateLimit.RetryAfterSeconds))
		abortWithError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	case redirect.InvalidSlug, redirect.NotFoundOrInactive:
		abortWithError(c, http.StatusNotFound, "QR code not found or inactive.")
	case redirect.InvalidDestination:
		abortWithError(c, http.StatusInternalServerError, "Invalid destination URL configuration.")
	case redirect.Resolved:
		c.Header("X-Rate-Limit-Remaining", strconv.Itoa(d.RateLimit.Remaining))
		c.Redirect(http.StatusFound, d.Location)
	}
}
