package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
)

// ApplyInput describes a single counter mutation. OrderID and UserID are
// optional attribution for the audit row.
type ApplyInput struct {
	ProductID uuid.UUID
	Counter   enums.InventoryCounter
	Delta     int
	Reason    string
	UserID    *uuid.UUID
	OrderID   *uuid.UUID
}

// ApplyResult reports the counter values around the mutation.
type ApplyResult struct {
	Previous int
	New      int
	Log      models.InventoryLog
}

// Adjuster mutates one product counter inside a caller-owned transaction and
// appends the matching InventoryLog row. Every counter change in the system
// goes through here so the audit trail stays complete.
type Adjuster interface {
	Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*ApplyResult, error)
}

type adjuster struct{}

// NewAdjuster returns the default adjuster implementation.
func NewAdjuster() Adjuster {
	return adjuster{}
}

func (adjuster) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*ApplyResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for inventory mutation")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !input.Counter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory counter")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	var product models.Product
	if err := tx.WithContext(ctx).Where("id = ?", input.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	previous := product.Stock
	if input.Counter == enums.InventoryCounterPhysical {
		previous = product.PhysicalInventory
	}
	next := previous + input.Delta
	if next < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("insufficient %s for %s", input.Counter, product.SKU)).
			WithDetails(map[string]any{
				"sku":       product.SKU,
				"counter":   input.Counter,
				"available": previous,
				"requested": -input.Delta,
			})
	}

	column := input.Counter.Column()
	// The guard repeats the non-negative check at UPDATE time so concurrent
	// writers cannot drive the counter below zero between read and write.
	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where(fmt.Sprintf("id = ? AND %s + ? >= 0", column), input.ProductID, input.Delta).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s + ?", column), input.Delta))
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "apply counter delta")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("insufficient %s for %s", input.Counter, product.SKU))
	}

	log := models.InventoryLog{
		ProductID:     input.ProductID,
		OrderID:       input.OrderID,
		UserID:        input.UserID,
		Counter:       input.Counter,
		Delta:         input.Delta,
		PreviousValue: previous,
		NewValue:      next,
		Reason:        input.Reason,
	}
	if err := tx.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory log")
	}

	return &ApplyResult{Previous: previous, New: next, Log: log}, nil
}
