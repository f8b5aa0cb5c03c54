package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dynamic-qr-platform/internal/analytics"
	"dynamic-qr-platform/internal/middleware"
	"dynamic-qr-platform/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsService 分析查询
type AnalyticsService interface {
	Snapshot(ctx context.Context, userID string, f analytics.Filters) (analytics.Summary, error)
	ExportRows(ctx context.Context, userID string, f analytics.Filters) ([]analytics.CSVRow, error)
	Options(ctx context.Context, userID string) ([]store.QrCodeOption, error)
}

// AnalyticsHandler 分析看板与导出
type AnalyticsHandler struct {
	service AnalyticsService
	now     func() time.Time
	logger  *zap.Logger
}

// NewAnalyticsHandler 创建处理器
func NewAnalyticsHandler(service AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, now: time.Now, logger: logger.Named("analytics_handler")}
}

// FiltersResponse 实际生效的筛选条件
type FiltersResponse struct {
	From        string  `json:"from" example:"2026-02-01"`
	To          string  `json:"to" example:"2026-02-28"`
	QrCodeID    *string `json:"qrCodeId"`
	ExcludeBots bool    `json:"excludeBots"`
}

// AnalyticsResponse 汇总结果
type AnalyticsResponse struct {
	Filters FiltersResponse `json:"filters"`
	analytics.Summary
}

// OptionsResponse 筛选下拉项
type OptionsResponse struct {
	Items []store.QrCodeOption `json:"items"`
}

func (h *AnalyticsHandler) filters(c *gin.Context) analytics.Filters {
	return analytics.ParseFilters(
		c.Query("from"),
		c.Query("to"),
		firstQuery(c, "qr", "qrCodeId"),
		c.Query("bots"),
		h.now(),
	)
}

// Summary godoc
// @Summary 扫码分析汇总
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Param   from  query  string  false  "开始日期 YYYY-MM-DD，默认 30 天前"
// @Param   to    query  string  false  "结束日期 YYYY-MM-DD，默认今天"
// @Param   qr    query  string  false  "二维码 ID"
// @Param   bots  query  string  false  "0 表示包含机器人流量"
// @Success 200 {object} AnalyticsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	f := h.filters(c)

	summary, err := h.service.Snapshot(c.Request.Context(), userID, f)
	if err != nil {
		h.writeError(c, "summary", userID, err, "Unable to load analytics.")
		return
	}

	var qrCodeID *string
	if f.QrCodeID != "" {
		qrCodeID = &f.QrCodeID
	}
	c.JSON(http.StatusOK, AnalyticsResponse{
		Filters: FiltersResponse{
			From:        f.FromInput,
			To:          f.ToInput,
			QrCodeID:    qrCodeID,
			ExcludeBots: f.ExcludeBots,
		},
		Summary: summary,
	})
}

// Export godoc
// @Summary 导出扫码明细 CSV
// @Description 按扫码时间倒序，最多 50000 行
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  text/csv
// @Param   from  query  string  false  "开始日期 YYYY-MM-DD"
// @Param   to    query  string  false  "结束日期 YYYY-MM-DD"
// @Param   qr    query  string  false  "二维码 ID"
// @Param   bots  query  string  false  "0 表示包含机器人流量"
// @Success 200 {string} string "CSV"
// @Failure 404 {object} ErrorResponse
// @Router /api/analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	f := h.filters(c)

	rows, err := h.service.ExportRows(c.Request.Context(), userID, f)
	if err != nil {
		h.writeError(c, "export", userID, err, "Unable to export analytics.")
		return
	}

	h.logger.Info("analytics.export.success", zap.String("user_id", userID), zap.Int("rows", len(rows)))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analytics-%s-to-%s.csv"`, f.FromInput, f.ToInput))
	c.Header("Cache-Control", "private, max-age=0, must-revalidate")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(analytics.FormatCSV(rows)))
}

// Options godoc
// @Summary 分析筛选用的二维码列表
// @Tags Analytics
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} OptionsResponse
// @Router /api/analytics/options [get]
func (h *AnalyticsHandler) Options(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	options, err := h.service.Options(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "options", userID, err, "Unable to load QR codes.")
		return
	}
	c.JSON(http.StatusOK, OptionsResponse{Items: options})
}

func (h *AnalyticsHandler) writeError(c *gin.Context, action, userID string, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Warn("analytics."+action+".ownership_denied", zap.String("user_id", userID))
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("analytics."+action+".failed", zap.String("user_id", userID), zap.Error(err))
	abortWithError(c, http.StatusInternalServerError, fallback)
}
