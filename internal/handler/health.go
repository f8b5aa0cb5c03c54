package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 数据库连通性检查，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	service string
	db      Pinger
	logger  *zap.Logger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(service string, db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{service: service, db: db, logger: logger.Named("health")}
}

// HealthCheck godoc
// @Summary 服务健康检查
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=30")
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// DatabaseCheck godoc
// @Summary 数据库健康检查
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /health/db [get]
func (h *HealthHandler) DatabaseCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health.db.failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "error",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  "reachable",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
