package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

// Repository exposes the persistence surface the orders service needs. The
// product reads live here too so order placement stays inside one transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)

	ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, cancelledAt *time.Time) error
	MarkItemFulfilled(ctx context.Context, itemID uuid.UUID) error

	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type listOrdersParams struct {
	Status     *enums.OrderStatus
	DayPrefix  string
	CustomerID *uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
}

// Service defines order placement, the status machine, and per-item
// pack/fulfill operations.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	PackItem(ctx context.Context, input PackItemInput) (*models.Order, error)
	FulfillItem(ctx context.Context, input FulfillItemInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Track(ctx context.Context, number, email string) (*TrackResult, error)
}
