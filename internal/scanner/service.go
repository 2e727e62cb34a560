package scanner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/internal/orders"
	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
)

// orderNumberPattern matches the MMDDYY-N order number shape. Anything else
// scanned on the floor is treated as a SKU.
var orderNumberPattern = regexp.MustCompile(`^\d{6}-\d+$`)

type orderReader interface {
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
}

type productReader interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
}

type orderActions interface {
	PackItem(ctx context.Context, input orders.PackItemInput) (*models.Order, error)
	FulfillItem(ctx context.Context, input orders.FulfillItemInput) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the warehouse scanning surface: code resolution, receiving, and
// by-SKU pack/fulfill against a scanned order.
type Service interface {
	Resolve(ctx context.Context, code string) (*ScanResult, error)
	Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error)
	PackBySKU(ctx context.Context, input ItemScanInput) (*models.Order, error)
	FulfillBySKU(ctx context.Context, input ItemScanInput) (*models.Order, error)
}

// ScanResult tells the scanner client what a code resolved to.
type ScanResult struct {
	Type    enums.ScanResultType `json:"type"`
	Product *models.Product      `json:"product,omitempty"`
	Order   *models.Order        `json:"order,omitempty"`
}

// ReceiveInput records a delivery scanned at the dock.
type ReceiveInput struct {
	SKU      string
	Quantity int
	Reason   string
	ActorID  uuid.UUID
}

// ReceiveResult reports both counters after receiving.
type ReceiveResult struct {
	ProductID         uuid.UUID `json:"product_id"`
	SKU               string    `json:"sku"`
	Stock             int       `json:"stock"`
	PhysicalInventory int       `json:"physical_inventory"`
}

// ItemScanInput targets the first unfulfilled item carrying the scanned SKU
// on the scanned order.
type ItemScanInput struct {
	OrderNumber string
	SKU         string
	Quantity    int
	ActorID     uuid.UUID
}

type service struct {
	orderRepo   orderReader
	productRepo productReader
	orderSvc    orderActions
	adjuster    inventory.Adjuster
	tx          txRunner
}

// NewService wires the scanner service dependencies.
func NewService(orderRepo orderReader, productRepo productReader, orderSvc orderActions, adjuster inventory.Adjuster, tx txRunner) (Service, error) {
	if orderRepo == nil || productRepo == nil {
		return nil, fmt.Errorf("order and product repositories required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		orderSvc:    orderSvc,
		adjuster:    adjuster,
		tx:          tx,
	}, nil
}

// Resolve classifies a scanned code. Codes shaped like order numbers resolve
// against orders, everything else against product SKUs.
func (s *service) Resolve(ctx context.Context, code string) (*ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code required")
	}

	if orderNumberPattern.MatchString(code) {
		order, err := s.orderRepo.FindByNumber(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order matches scanned code")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		return &ScanResult{Type: enums.ScanResultTypeOrder, Order: order}, nil
	}

	product, err := s.productRepo.FindBySKU(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no product matches scanned code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &ScanResult{Type: enums.ScanResultTypeProduct, Product: product}, nil
}

// Receive increments both counters for a delivery: the goods are on the shelf
// and sellable at once.
func (s *service) Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	reason := input.Reason
	if reason == "" {
		reason = inventory.ReceiveReason
	}

	product, err := s.productRepo.FindBySKU(ctx, input.SKU)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	var actor *uuid.UUID
	if input.ActorID != uuid.Nil {
		id := input.ActorID
		actor = &id
	}

	result := &ReceiveResult{ProductID: product.ID, SKU: product.SKU}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, counter := range []enums.InventoryCounter{
			enums.InventoryCounterStock,
			enums.InventoryCounterPhysical,
		} {
			applied, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
				ProductID: product.ID,
				Counter:   counter,
				Delta:     input.Quantity,
				Reason:    reason,
				UserID:    actor,
			})
			if err != nil {
				return err
			}
			if counter == enums.InventoryCounterStock {
				result.Stock = applied.New
			} else {
				result.PhysicalInventory = applied.New
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PackBySKU packs the first unfulfilled item with the scanned SKU.
func (s *service) PackBySKU(ctx context.Context, input ItemScanInput) (*models.Order, error) {
	order, item, err := s.locateItem(ctx, input.OrderNumber, input.SKU)
	if err != nil {
		return nil, err
	}
	return s.orderSvc.PackItem(ctx, orders.PackItemInput{
		OrderID: order.ID,
		ItemID:  item.ID,
		ActorID: input.ActorID,
	})
}

// FulfillBySKU fulfills the first unfulfilled item with the scanned SKU. A
// zero quantity defaults to the full ordered quantity.
func (s *service) FulfillBySKU(ctx context.Context, input ItemScanInput) (*models.Order, error) {
	order, item, err := s.locateItem(ctx, input.OrderNumber, input.SKU)
	if err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = item.Quantity
	}
	return s.orderSvc.FulfillItem(ctx, orders.FulfillItemInput{
		OrderID:  order.ID,
		ItemID:   item.ID,
		Quantity: quantity,
		ActorID:  input.ActorID,
	})
}

func (s *service) locateItem(ctx context.Context, number, sku string) (*models.Order, *models.OrderItem, error) {
	number = strings.TrimSpace(number)
	sku = strings.TrimSpace(sku)
	if number == "" || sku == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and sku required")
	}

	order, err := s.orderRepo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	for i := range order.Items {
		if order.Items[i].SKU == sku && !order.Items[i].Fulfilled {
			return order, &order.Items[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no unfulfilled item with that sku on the order").
		WithDetails(map[string]any{"order_number": number, "sku": sku})
}
