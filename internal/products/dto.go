package products

import (
	"github.com/google/uuid"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// CreateProductInput holds the validated payload to create a catalog product.
// Initial counter values are applied through the inventory audit trail.
type CreateProductInput struct {
	SKU               string
	Name              string
	Description       *string
	Category          enums.ProductCategory
	PriceCents        int
	Stock             int
	PhysicalInventory int
	MinStockThreshold int
	ImageURL          *string
	IsActive          bool
	ActorID           uuid.UUID
}

// UpdateProductInput holds optional mutation values. Counters are absent on
// purpose; stock moves only through inventory adjustments.
type UpdateProductInput struct {
	SKU               *string
	Name              *string
	Description       *string
	Category          *enums.ProductCategory
	PriceCents        *int
	MinStockThreshold *int
	ImageURL          *string
	IsActive          *bool
}

// PublicProduct is the storefront projection of a product. Counter values are
// collapsed into the in_stock flag.
type PublicProduct struct {
	ID          uuid.UUID             `json:"id"`
	SKU         string                `json:"sku"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Category    enums.ProductCategory `json:"category"`
	PriceCents  int                   `json:"price_cents"`
	ImageURL    *string               `json:"image_url,omitempty"`
	InStock     bool                  `json:"in_stock"`
}

// NewPublicProduct projects a catalog row into its storefront shape.
func NewPublicProduct(p *models.Product) PublicProduct {
	return PublicProduct{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		ImageURL:    p.ImageURL,
		InStock:     p.Stock > 0,
	}
}

// AdminProduct is the back-office projection carrying both counters.
type AdminProduct struct {
	models.Product
	IsLowStock bool `json:"is_low_stock"`
}

// NewAdminProduct projects a catalog row for back-office screens.
func NewAdminProduct(p *models.Product) AdminProduct {
	return AdminProduct{Product: *p, IsLowStock: p.IsLowStock()}
}

// ListPublicParams filters the storefront catalog.
type ListPublicParams struct {
	Category *enums.ProductCategory
	Query    string
	Limit    int
	Cursor   string
}

// PublicListResult wraps one storefront page plus the next cursor.
type PublicListResult struct {
	Items  []PublicProduct `json:"items"`
	Cursor string          `json:"cursor"`
}

// ListAdminParams filters the back-office catalog. Inactive products are
// included unless ActiveOnly is set.
type ListAdminParams struct {
	Category     *enums.ProductCategory
	Query        string
	ActiveOnly   bool
	LowStockOnly bool
	Limit        int
	Cursor       string
}

// AdminListResult wraps one back-office page plus the next cursor.
type AdminListResult struct {
	Items  []AdminProduct `json:"items"`
	Cursor string         `json:"cursor"`
}
