package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// InventoryLog is an append-only audit row written for every counter
// mutation. Rows are never updated or deleted by application code.
type InventoryLog struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID       *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	UserID        *uuid.UUID             `gorm:"column:user_id;type:uuid"`
	Counter       enums.InventoryCounter `gorm:"column:counter;type:inventory_counter;not null"`
	Delta         int                    `gorm:"column:delta;not null"`
	PreviousValue int                    `gorm:"column:previous_value;not null"`
	NewValue      int                    `gorm:"column:new_value;not null"`
	Reason        string                 `gorm:"column:reason;not null"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key so inserts work on every driver.
func (l *InventoryLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
