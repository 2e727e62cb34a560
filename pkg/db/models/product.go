package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// Product is a catalog listing carrying both inventory counters. Stock is the
// sellable quantity (moves at placement/cancellation); PhysicalInventory is the
// on-hand warehouse quantity (moves at fulfillment and receiving).
type Product struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SKU               string                `gorm:"column:sku;not null;uniqueIndex"`
	Name              string                `gorm:"column:name;not null"`
	Description       *string               `gorm:"column:description"`
	Category          enums.ProductCategory `gorm:"column:category;type:product_category;not null;default:'other'"`
	PriceCents        int                   `gorm:"column:price_cents;not null"`
	Stock             int                   `gorm:"column:stock;not null;default:0"`
	PhysicalInventory int                   `gorm:"column:physical_inventory;not null;default:0"`
	MinStockThreshold int                   `gorm:"column:min_stock_threshold;not null;default:0"`
	ImageURL          *string               `gorm:"column:image_url"`
	IsActive          bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so inserts work on every driver.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the sellable counter is at or below the alert
// threshold. A zero threshold disables alerts for the product.
func (p *Product) IsLowStock() bool {
	return p.MinStockThreshold > 0 && p.Stock <= p.MinStockThreshold
}
