package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanEvent 一次成功解析的扫码记录，只追加不更新
type ScanEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	QrCodeID  string    `gorm:"size:36;not null;index" json:"qrCodeId"`
	UserID    string    `gorm:"size:36;not null;index:idx_scan_events_user_time,priority:1" json:"userId"`
	ScannedAt time.Time `gorm:"not null;index:idx_scan_events_user_time,priority:2" json:"scannedAt"`
	IPHash    *string   `gorm:"size:64;index" json:"ipHash"`
	UserAgent *string   `gorm:"type:text" json:"userAgent"`
	Referrer  *string   `gorm:"type:text" json:"referrer"`
	Country   *string   `gorm:"size:100" json:"country"`
	City      *string   `gorm:"size:100" json:"city"`
	IsBot     bool      `gorm:"not null;default:false" json:"isBot"`

	QrCode *QrCode `gorm:"foreignKey:QrCodeID" json:"-"`
}

func (ScanEvent) TableName() string {
	return "scan_events"
}

// BeforeCreate 补全主键与扫码时间
func (e *ScanEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ScannedAt.IsZero() {
		e.ScannedAt = time.Now().UTC()
	}
	return nil
}
