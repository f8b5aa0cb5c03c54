package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QrCode 动态二维码，slug 全局唯一，停用即 IsActive=false，不做物理删除
type QrCode struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;not null;index" json:"userId"`
	Name           string    `gorm:"size:120;not null" json:"name"`
	Slug           string    `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	DestinationURL string    `gorm:"type:text;not null" json:"destinationUrl"`
	IsActive       bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (QrCode) TableName() string {
	return "qr_codes"
}

// BeforeCreate 未指定主键时生成 UUID
func (q *QrCode) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
