package handler

import (
	"dynamic-qr-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Routes 组装路由所需的处理器与中间件
type Routes struct {
	Redirect  *RedirectHandler
	QrCodes   *QrCodeHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler

	Auth      gin.HandlerFunc
	RateLimit func(route string) gin.HandlerFunc
	Logger    *zap.Logger
}

// NewRouter 注册全部业务路由。限流放在认证之前，未认证的请求同样计数
func NewRouter(r Routes) *gin.Engine {
	router := gin.New()
	// 空 slug 也要进入解析器返回 JSON 404，不能被 301 到别的路径
	router.RedirectTrailingSlash = false
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapRecovery(r.Logger, true))
	router.Use(middleware.GinZapLogger(r.Logger))

	router.GET("/health", r.Health.HealthCheck)
	router.GET("/health/db", r.Health.DatabaseCheck)

	// 跳转的限流在解析器内部完成。通配参数带前导 /，由 NormalizeSlug 去掉
	router.GET("/r/*slug", r.Redirect.Redirect)

	api := router.Group("/api")
	{
		api.GET("/qr-codes", r.RateLimit("qr-codes:get"), r.Auth, r.QrCodes.List)
		api.POST("/qr-codes", r.RateLimit("qr-codes:post"), r.Auth, r.QrCodes.Create)
		api.GET("/qr-codes/:id", r.RateLimit("qr-codes:get"), r.Auth, r.QrCodes.Get)
		api.PATCH("/qr-codes/:id", r.RateLimit("qr-codes:patch"), r.Auth, r.QrCodes.Update)
		api.DELETE("/qr-codes/:id", r.RateLimit("qr-codes:delete"), r.Auth, r.QrCodes.Disable)

		api.GET("/analytics", r.RateLimit("analytics"), r.Auth, r.Analytics.Summary)
		api.GET("/analytics/options", r.RateLimit("analytics:options"), r.Auth, r.Analytics.Options)
		api.GET("/analytics/export", r.RateLimit("analytics:export"), r.Auth, r.Analytics.Export)
	}
	return router
}
