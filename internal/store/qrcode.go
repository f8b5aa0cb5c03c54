package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dynamic-qr-platform/internal/model"

	"gorm.io/gorm"
)

// StatusFilter 列表状态筛选
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// ParseStatusFilter 非法取值按 all 处理
func ParseStatusFilter(raw string) StatusFilter {
	switch StatusFilter(raw) {
	case StatusActive, StatusInactive:
		return StatusFilter(raw)
	}
	return StatusAll
}

// ListParams 列表查询参数
type ListParams struct {
	Search   string
	Status   StatusFilter
	Page     int
	PageSize int
}

// ListResult 分页结果
type ListResult struct {
	Items      []model.QrCode `json:"items"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// QrCodeInput 创建或更新时写入的字段，调用方负责校验
type QrCodeInput struct {
	Name           string
	Slug           string
	DestinationURL string
	IsActive       bool
}

// QrCodeOption 分析筛选下拉项
type QrCodeOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"isActive"`
}

const maxOptions = 200

// QrCodeStore 二维码仓储。所有按用户的读写都在每次调用时重新校验归属。
type QrCodeStore struct {
	db *gorm.DB
}

// NewQrCodeStore 创建仓储
func NewQrCodeStore(db *gorm.DB) *QrCodeStore {
	return &QrCodeStore{db: db}
}

// FindBySlug 跳转路径使用，不做归属校验；不存在时返回 ErrNotFound
func (s *QrCodeStore) FindBySlug(ctx context.Context, slug string) (*model.QrCode, error) {
	var qr model.QrCode
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询二维码失败: %w", err)
	}
	return &qr, nil
}

// GetOwned 按 ID 读取并校验归属
func (s *QrCodeStore) GetOwned(ctx context.Context, userID, id string) (*model.QrCode, error) {
	return s.firstOwned(ctx, userID, "id = ?", id)
}

// GetOwnedBySlug 按 slug 读取并校验归属
func (s *QrCodeStore) GetOwnedBySlug(ctx context.Context, userID, slug string) (*model.QrCode, error) {
	return s.firstOwned(ctx, userID, "slug = ?", slug)
}

func (s *QrCodeStore) firstOwned(ctx context.Context, userID, query string, arg string) (*model.QrCode, error) {
	var qr model.QrCode
	err := s.db.WithContext(ctx).Where(query, arg).First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询二维码失败: %w", err)
	}
	if qr.UserID != userID {
		return nil, ErrNotFound
	}
	return &qr, nil
}

// List 列出用户的二维码
func (s *QrCodeStore) List(ctx context.Context, userID string, p ListParams) (*ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}

	scoped := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&model.QrCode{}).Where("user_id = ?", userID)
		if search := strings.TrimSpace(p.Search); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(destination_url) LIKE ?", like, like, like)
		}
		switch p.Status {
		case StatusActive:
			query = query.Where("is_active = ?", true)
		case StatusInactive:
			query = query.Where("is_active = ?", false)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("统计二维码失败: %w", err)
	}

	items := make([]model.QrCode, 0, p.PageSize)
	err := scoped().Order("created_at DESC").
		Limit(p.PageSize).
		Offset((p.Page - 1) * p.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询二维码列表失败: %w", err)
	}

	return &ListResult{
		Items:      items,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
	}, nil
}

// Options 分析页筛选用的二维码列表，按名称排序，最多 200 条
func (s *QrCodeStore) Options(ctx context.Context, userID string) ([]QrCodeOption, error) {
	options := make([]QrCodeOption, 0)
	err := s.db.WithContext(ctx).Model(&model.QrCode{}).
		Select("id", "name", "slug", "is_active").
		Where("user_id = ?", userID).
		Order("name ASC").
		Limit(maxOptions).
		Scan(&options).Error
	if err != nil {
		return nil, fmt.Errorf("查询二维码选项失败: %w", err)
	}
	return options, nil
}

// CountActive 用户启用中的二维码数量
func (s *QrCodeStore) CountActive(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.QrCode{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计启用二维码失败: %w", err)
	}
	return count, nil
}

// SlugExists 包括其他用户的二维码
func (s *QrCodeStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.QrCode{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 为用户创建二维码
func (s *QrCodeStore) Create(ctx context.Context, userID string, in QrCodeInput) (*model.QrCode, error) {
	qr := model.QrCode{
		UserID:         userID,
		Name:           in.Name,
		Slug:           in.Slug,
		DestinationURL: in.DestinationURL,
		IsActive:       in.IsActive,
	}
	// is_active 不设数据库默认值，false 照常写入
	if err := s.db.WithContext(ctx).Create(&qr).Error; err != nil {
		return nil, mapWriteError(err)
	}
	return &qr, nil
}

// Update 校验归属后整体更新
func (s *QrCodeStore) Update(ctx context.Context, userID, id string, in QrCodeInput) (*model.QrCode, error) {
	qr, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(qr).
		Select("name", "slug", "destination_url", "is_active").
		Updates(model.QrCode{
			Name:           in.Name,
			Slug:           in.Slug,
			DestinationURL: in.DestinationURL,
			IsActive:       in.IsActive,
		}).Error
	if err != nil {
		return nil, mapWriteError(err)
	}
	return s.GetOwned(ctx, userID, id)
}

// SetStatus 校验归属后切换启用状态，状态未变化时返回 ErrStatusUnchanged
func (s *QrCodeStore) SetStatus(ctx context.Context, userID, id string, active bool) (*model.QrCode, error) {
	qr, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if qr.IsActive == active {
		return nil, ErrStatusUnchanged
	}
	if err := s.db.WithContext(ctx).Model(qr).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("更新二维码状态失败: %w", err)
	}
	qr.IsActive = active
	return qr, nil
}

func mapWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlug
	}
	return fmt.Errorf("写入二维码失败: %w", err)
}
