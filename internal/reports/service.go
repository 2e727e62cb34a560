package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
)

// lowStockLister surfaces products at or below their restock threshold.
type lowStockLister interface {
	ListBelowThreshold(ctx context.Context) ([]models.Product, error)
}

// Service builds the back-office sales and inventory reports.
type Service interface {
	SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error)
	InventoryReport(ctx context.Context) (*InventoryReport, error)
}

type service struct {
	repo     Repository
	products lowStockLister
}

// SalesReport summarizes the order book over a window. Money fields are
// decimal dollar strings; cents never leave the persistence layer raw.
type SalesReport struct {
	From         time.Time                   `json:"from"`
	To           time.Time                   `json:"to"`
	OrderCount   int64                       `json:"order_count"`
	UnitsSold    int64                       `json:"units_sold"`
	GrossRevenue string                      `json:"gross_revenue"`
	ByStatus     map[enums.OrderStatus]int64 `json:"by_status"`
}

// LowStockProduct is one row of the inventory report.
type LowStockProduct struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// InventoryReport lists products needing restock and values stock on hand.
type InventoryReport struct {
	LowStock         []LowStockProduct `json:"low_stock"`
	TotalRetailValue string            `json:"total_retail_value"`
}

// NewService wires the reports dependencies.
func NewService(repo Repository, products lowStockLister) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reports repository required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window required")
	}
	if !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window start must precede end")
	}

	totals, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales totals")
	}

	breakdown, err := s.repo.StatusBreakdown(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate status breakdown")
	}
	byStatus := make(map[enums.OrderStatus]int64, len(breakdown))
	for _, row := range breakdown {
		byStatus[row.Status] = row.Count
	}

	return &SalesReport{
		From:         from,
		To:           to,
		OrderCount:   totals.OrderCount,
		UnitsSold:    totals.UnitsSold,
		GrossRevenue: centsToDollars(totals.GrossRevenueCents),
		ByStatus:     byStatus,
	}, nil
}

func (s *service) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	low, err := s.products.ListBelowThreshold(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}

	valueCents, err := s.repo.RetailValueCents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate retail value")
	}

	rows := make([]LowStockProduct, 0, len(low))
	for _, product := range low {
		rows = append(rows, LowStockProduct{
			ProductID: product.ID.String(),
			SKU:       product.SKU,
			Name:      product.Name,
			Stock:     product.Stock,
			Threshold: product.MinStockThreshold,
		})
	}

	return &InventoryReport{
		LowStock:         rows,
		TotalRetailValue: centsToDollars(valueCents),
	}, nil
}

func centsToDollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
