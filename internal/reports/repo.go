package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// Repository runs the aggregate queries backing the report endpoints.
type Repository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (salesTotals, error)
	StatusBreakdown(ctx context.Context, from, to time.Time) ([]statusCount, error)
	RetailValueCents(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reports repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type salesTotals struct {
	OrderCount        int64
	UnitsSold         int64
	GrossRevenueCents int64
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

// SalesTotals counts orders, units, and revenue inside the window. Cancelled
// orders are excluded: their stock was restored and no money changed hands.
func (r *repositoryImpl) SalesTotals(ctx context.Context, from, to time.Time) (salesTotals, error) {
	var totals salesTotals

	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_cents), 0) AS gross_revenue_cents").
		Where("created_at >= ? AND created_at < ? AND status <> ?", from, to, enums.OrderStatusCancelled).
		Row().
		Scan(&totals.OrderCount, &totals.GrossRevenueCents)
	if err != nil {
		return salesTotals{}, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status <> ?", from, to, enums.OrderStatusCancelled).
		Row().
		Scan(&totals.UnitsSold)
	if err != nil {
		return salesTotals{}, err
	}
	return totals, nil
}

// StatusBreakdown counts every order in the window per status, cancelled
// included, so the back office can see the full funnel.
func (r *repositoryImpl) StatusBreakdown(ctx context.Context, from, to time.Time) ([]statusCount, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RetailValueCents sums stock * price over active products.
func (r *repositoryImpl) RetailValueCents(ctx context.Context) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(SUM(stock * price_cents), 0)").
		Where("is_active = ?", true).
		Row().
		Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}
