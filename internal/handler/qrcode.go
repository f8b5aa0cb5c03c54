package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dynamic-qr-platform/internal/middleware"
	"dynamic-qr-platform/internal/model"
	"dynamic-qr-platform/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QrCodeRepository 二维码读写，每次调用都校验归属
type QrCodeRepository interface {
	List(ctx context.Context, userID string, p store.ListParams) (*store.ListResult, error)
	GetOwned(ctx context.Context, userID, id string) (*model.QrCode, error)
	Create(ctx context.Context, userID string, in store.QrCodeInput) (*model.QrCode, error)
	Update(ctx context.Context, userID, id string, in store.QrCodeInput) (*model.QrCode, error)
	SetStatus(ctx context.Context, userID, id string, active bool) (*model.QrCode, error)
}

// SlugSource 提供一个未被占用的 slug
type SlugSource interface {
	GetCode(ctx context.Context) (string, error)
}

// SlugInvalidator 二维码变更后清理跳转缓存
type SlugInvalidator interface {
	Invalidate(ctx context.Context, slugs ...string)
}

// QrCodeHandler 二维码管理
type QrCodeHandler struct {
	repo    QrCodeRepository
	slugs   SlugSource
	cache   SlugInvalidator
	baseURL string
	logger  *zap.Logger
}

// NewQrCodeHandler 创建处理器
func NewQrCodeHandler(repo QrCodeRepository, slugs SlugSource, cache SlugInvalidator, baseURL string, logger *zap.Logger) *QrCodeHandler {
	return &QrCodeHandler{
		repo:    repo,
		slugs:   slugs,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("qr_codes"),
	}
}

// QrCodeRequest 创建或修改二维码。修改时缺省字段沿用原值
type QrCodeRequest struct {
	Name           *string `json:"name" example:"Spring campaign"`
	Slug           *string `json:"slug" example:"spring-2026"`
	DestinationURL *string `json:"destinationUrl" example:"https://example.com/spring"`
	IsActive       *bool   `json:"isActive" example:"true"`
}

// QrCodeResponse 二维码
type QrCodeResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	DestinationURL string    `json:"destinationUrl"`
	IsActive       bool      `json:"isActive"`
	ShortURL       string    `json:"shortUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// QrCodeItemResponse 单个二维码
type QrCodeItemResponse struct {
	Item QrCodeResponse `json:"item"`
}

// QrCodeListResponse 分页列表
type QrCodeListResponse struct {
	Items      []QrCodeResponse `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

func (h *QrCodeHandler) toResponse(qr *model.QrCode) QrCodeResponse {
	return QrCodeResponse{
		ID:             qr.ID,
		Name:           qr.Name,
		Slug:           qr.Slug,
		DestinationURL: qr.DestinationURL,
		IsActive:       qr.IsActive,
		ShortURL:       h.baseURL + "/r/" + qr.Slug,
		CreatedAt:      qr.CreatedAt,
		UpdatedAt:      qr.UpdatedAt,
	}
}

// List godoc
// @Summary 二维码列表
// @Tags QrCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   q         query  string  false  "按名称、slug、目标地址搜索"
// @Param   status    query  string  false  "all | active | inactive"
// @Param   page      query  int     false  "页码"
// @Param   pageSize  query  int     false  "每页数量"
// @Success 200 {object} QrCodeListResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/qr-codes [get]
func (h *QrCodeHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := h.repo.List(c.Request.Context(), userID, store.ListParams{
		Search:   strings.TrimSpace(c.Query("q")),
		Status:   store.ParseStatusFilter(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error("qr_codes.list.failed", zap.String("user_id", userID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Unable to load QR codes.")
		return
	}

	items := make([]QrCodeResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, h.toResponse(&result.Items[i]))
	}
	h.logger.Info("qr_codes.list.success", zap.String("user_id", userID), zap.Int("count", len(items)))
	c.JSON(http.StatusOK, QrCodeListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Create godoc
// @Summary 创建二维码
// @Description slug 为空时自动生成
// @Tags QrCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   qrCode  body  QrCodeRequest  true  "二维码"
// @Success 201 {object} QrCodeItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/qr-codes [post]
func (h *QrCodeHandler) Create(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	var req QrCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "JSON body is required.")
		return
	}

	slug := deref(req.Slug)
	if strings.TrimSpace(slug) == "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		generated, err := h.slugs.GetCode(ctx)
		cancel()
		if err != nil {
			h.logger.Error("qr_codes.create.slug_unavailable", zap.Error(err))
			abortWithError(c, http.StatusServiceUnavailable, "Unable to generate a slug. Please try again.")
			return
		}
		slug = generated
	}

	in, err := validateQrInput(deref(req.Name), slug, deref(req.DestinationURL), req.IsActive != nil && *req.IsActive)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	qr, err := h.repo.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.writeError(c, "create", userID, err, "Unable to create QR code.")
		return
	}

	h.logger.Info("qr_codes.create.success", zap.String("user_id", userID), zap.String("qr_code_id", qr.ID))
	c.JSON(http.StatusCreated, QrCodeItemResponse{Item: h.toResponse(qr)})
}

// Get godoc
// @Summary 读取二维码
// @Tags QrCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "二维码 ID"
// @Success 200 {object} QrCodeItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/qr-codes/{id} [get]
func (h *QrCodeHandler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	qr, err := h.repo.GetOwned(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, "get", userID, err, "Unable to load QR code.")
		return
	}
	c.JSON(http.StatusOK, QrCodeItemResponse{Item: h.toResponse(qr)})
}

// Update godoc
// @Summary 修改二维码
// @Description 未提供的字段沿用原值，合并后整体校验
// @Tags QrCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id      path  string         true  "二维码 ID"
// @Param   qrCode  body  QrCodeRequest  true  "待修改字段"
// @Success 200 {object} QrCodeItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/qr-codes/{id} [patch]
func (h *QrCodeHandler) Update(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	existing, err := h.repo.GetOwned(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, "update", userID, err, "Unable to update QR code.")
		return
	}

	var req QrCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "JSON body is required.")
		return
	}

	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	in, err := validateQrInput(
		orDefault(req.Name, existing.Name),
		orDefault(req.Slug, existing.Slug),
		orDefault(req.DestinationURL, existing.DestinationURL),
		isActive,
	)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	qr, err := h.repo.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		h.writeError(c, "update", userID, err, "Unable to update QR code.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), existing.Slug, qr.Slug)

	h.logger.Info("qr_codes.update.success", zap.String("user_id", userID), zap.String("qr_code_id", qr.ID))
	c.JSON(http.StatusOK, QrCodeItemResponse{Item: h.toResponse(qr)})
}

// Disable godoc
// @Summary 停用二维码
// @Description 不做物理删除，只置为停用
// @Tags QrCode
// @Security ApiKeyAuth
// @Param   id  path  string  true  "二维码 ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/qr-codes/{id} [delete]
func (h *QrCodeHandler) Disable(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	qr, err := h.repo.SetStatus(c.Request.Context(), userID, id, false)
	if err != nil {
		h.writeError(c, "disable", userID, err, "Unable to disable QR code.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), qr.Slug)

	h.logger.Info("qr_codes.disable.success", zap.String("user_id", userID), zap.String("qr_code_id", qr.ID))
	c.Status(http.StatusNoContent)
}

func (h *QrCodeHandler) idParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid QR code id.")
		return "", false
	}
	return id, true
}

// writeError 按错误类型映射状态码，未知错误只返回通用提示
func (h *QrCodeHandler) writeError(c *gin.Context, action, userID string, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateSlug):
		h.logger.Warn("qr_codes."+action+".duplicate_slug", zap.String("user_id", userID))
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrStatusUnchanged):
		abortWithError(c, http.StatusConflict, err.Error())
	case isValidationError(err):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("qr_codes."+action+".failed", zap.String("user_id", userID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
