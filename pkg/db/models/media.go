package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// MediaAsset captures metadata for objects uploaded through presigned URLs.
type MediaAsset struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OwnerUserID uuid.UUID         `gorm:"column:owner_user_id;type:uuid;not null;index"`
	Kind        enums.MediaKind   `gorm:"column:kind;type:media_kind;not null"`
	ObjectKey   string            `gorm:"column:object_key;not null;uniqueIndex"`
	ContentType string            `gorm:"column:content_type;not null"`
	SizeBytes   *int64            `gorm:"column:size_bytes"`
	Status      enums.MediaStatus `gorm:"column:status;type:media_status;not null;default:'pending'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so inserts work on every driver.
func (m *MediaAsset) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
