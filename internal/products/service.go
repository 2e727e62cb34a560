package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/pkg/db"
	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

// InitialStockReason is the audit reason for counter values set at creation.
const InitialStockReason = "Initial stock"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management plus the storefront read surface.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*AdminProduct, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*AdminProduct, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*AdminProduct, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*PublicProduct, error)
	ListPublic(ctx context.Context, params ListPublicParams) (*PublicListResult, error)
	ListAdmin(ctx context.Context, params ListAdminParams) (*AdminListResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	adjuster inventory.Adjuster
}

// NewService constructs a catalog service instance.
func NewService(repo Repository, tx txRunner, adjuster inventory.Adjuster) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	return &service{repo: repo, tx: tx, adjuster: adjuster}, nil
}

// Create inserts a catalog product. Non-zero initial counters are applied as
// audited adjustments so the inventory log covers the product's full history.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*AdminProduct, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.Stock < 0 || input.PhysicalInventory < 0 || input.MinStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counters and threshold must be non-negative")
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product := &models.Product{
			SKU:               input.SKU,
			Name:              input.Name,
			Description:       input.Description,
			Category:          input.Category,
			PriceCents:        input.PriceCents,
			MinStockThreshold: input.MinStockThreshold,
			ImageURL:          input.ImageURL,
			IsActive:          input.IsActive,
		}
		if err := repo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists").
					WithDetails(map[string]any{"sku": input.SKU})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
		}

		actor := actorPtr(input.ActorID)
		for _, seed := range []struct {
			counter enums.InventoryCounter
			value   int
		}{
			{enums.InventoryCounterStock, input.Stock},
			{enums.InventoryCounterPhysical, input.PhysicalInventory},
		} {
			if seed.value == 0 {
				continue
			}
			applied, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
				ProductID: product.ID,
				Counter:   seed.counter,
				Delta:     seed.value,
				Reason:    InitialStockReason,
				UserID:    actor,
			})
			if err != nil {
				return err
			}
			if seed.counter == enums.InventoryCounterStock {
				product.Stock = applied.New
			} else {
				product.PhysicalInventory = applied.New
			}
		}

		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := NewAdminProduct(created)
	return &result, nil
}

// Update applies a partial catalog edit. Counter fields are not part of the
// input; stock moves only through inventory adjustments.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*AdminProduct, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.MinStockThreshold != nil && *input.MinStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock_threshold must be non-negative")
	}

	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(product, input)
	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists").
				WithDetails(map[string]any{"sku": product.SKU})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	result := NewAdminProduct(product)
	return &result, nil
}

// Deactivate soft-removes a product from the storefront. Existing order item
// snapshots keep their history; the row is never deleted.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return pkgerrors.New(pkgerrors.CodeConflict, "product already inactive")
	}
	product.IsActive = false
	if err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AdminProduct, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	result := NewAdminProduct(product)
	return &result, nil
}

// GetPublic resolves a storefront product. Inactive products read as missing.
func (s *service) GetPublic(ctx context.Context, id uuid.UUID) (*PublicProduct, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	result := NewPublicProduct(product)
	return &result, nil
}

func (s *service) ListPublic(ctx context.Context, params ListPublicParams) (*PublicListResult, error) {
	query := listProductsParams{
		Category:   params.Category,
		Query:      params.Query,
		ActiveOnly: true,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &PublicListResult{Items: make([]PublicProduct, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, NewPublicProduct(&rows[i]))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ListAdmin(ctx context.Context, params ListAdminParams) (*AdminListResult, error) {
	query := listProductsParams{
		Category:     params.Category,
		Query:        params.Query,
		ActiveOnly:   params.ActiveOnly,
		LowStockOnly: params.LowStockOnly,
		Limit:        params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &AdminListResult{Items: make([]AdminProduct, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, NewAdminProduct(&rows[i]))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.MinStockThreshold != nil {
		product.MinStockThreshold = *input.MinStockThreshold
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
