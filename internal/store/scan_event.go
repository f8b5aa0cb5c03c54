package store

import (
	"context"
	"fmt"
	"time"

	"dynamic-qr-platform/internal/model"

	"gorm.io/gorm"
)

// ScanFilter 已做过归属校验的扫码查询条件
type ScanFilter struct {
	UserID      string
	From        time.Time
	To          time.Time
	QrCodeID    string
	ExcludeBots bool
}

// ScanEventStore 扫码记录仓储，只追加
type ScanEventStore struct {
	db *gorm.DB
}

// NewScanEventStore 创建仓储
func NewScanEventStore(db *gorm.DB) *ScanEventStore {
	return &ScanEventStore{db: db}
}

// Create 写入一条扫码记录
func (s *ScanEventStore) Create(ctx context.Context, event *model.ScanEvent) error {
	if err := s.db.WithContext(ctx).Omit("QrCode").Create(event).Error; err != nil {
		return fmt.Errorf("写入扫码记录失败: %w", err)
	}
	return nil
}

// ListForSummary 汇总所需的扫码记录，附带所属二维码
func (s *ScanEventStore) ListForSummary(ctx context.Context, f ScanFilter) ([]model.ScanEvent, error) {
	events := make([]model.ScanEvent, 0)
	err := s.filtered(ctx, f).
		Select("id", "qr_code_id", "user_id", "scanned_at", "ip_hash", "is_bot").
		Preload("QrCode").
		Order("scanned_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("查询扫码记录失败: %w", err)
	}
	return events, nil
}

// ListForExport 导出用，按扫码时间倒序，最多 limit 条
func (s *ScanEventStore) ListForExport(ctx context.Context, f ScanFilter, limit int) ([]model.ScanEvent, error) {
	events := make([]model.ScanEvent, 0)
	err := s.filtered(ctx, f).
		Preload("QrCode").
		Order("scanned_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("导出扫码记录失败: %w", err)
	}
	return events, nil
}

func (s *ScanEventStore) filtered(ctx context.Context, f ScanFilter) *gorm.DB {
	query := s.db.WithContext(ctx).
		Where("user_id = ? AND scanned_at >= ? AND scanned_at <= ?", f.UserID, f.From, f.To)
	if f.QrCodeID != "" {
		query = query.Where("qr_code_id = ?", f.QrCodeID)
	}
	if f.ExcludeBots {
		query = query.Where("is_bot = ?", false)
	}
	return query
}
