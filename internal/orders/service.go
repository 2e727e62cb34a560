package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

// Audit reasons written for each inventory side effect of the order lifecycle.
const (
	ReasonPlacement    = "Order placement"
	ReasonCancellation = "Order cancellation"
	ReasonPacked       = "Item packed"
	ReasonFulfillment  = "Order fulfillment"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier fans out back-office notifications for order events. Optional; a
// nil notifier disables the fan-out without affecting the order itself.
type Notifier interface {
	OrderPlaced(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type service struct {
	repo     Repository
	tx       txRunner
	adjuster inventory.Adjuster
	notifier Notifier
	now      func() time.Time
}

// ServiceParams bundle the orders service dependencies. Now is optional and
// defaults to time.Now (tests pin it to exercise the date prefix).
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Adjuster inventory.Adjuster
	Notifier Notifier
	Now      func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		adjuster: params.Adjuster,
		notifier: params.Notifier,
		now:      now,
	}, nil
}

// Place validates the whole order against current stock, then inserts the
// order and reserves stock atomically. Any shortfall rejects the entire order
// with one detail entry per insufficient line; nothing is decremented on
// rejection.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceInput(input); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		products, err := repo.FindProductsByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		var shortfalls []Shortfall
		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown or inactive product").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
			if product.Stock < item.Quantity {
				shortfalls = append(shortfalls, Shortfall{
					SKU:         product.SKU,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(shortfalls)
		}

		now := s.now()
		numbers, err := repo.ListNumbersByPrefix(ctx, orderNumberPrefix(now))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan order numbers")
		}

		order := &models.Order{
			OrderNumber:     nextOrderNumber(now, numbers),
			Status:          enums.OrderStatusPending,
			CustomerID:      input.CustomerID,
			CustomerName:    input.CustomerName,
			CustomerEmail:   strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
			CustomerPhone:   input.CustomerPhone,
			ShippingAddress: input.ShippingAddress,
			Notes:           input.Notes,
		}
		for _, item := range input.Items {
			product := byID[item.ProductID]
			productID := product.ID
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   &productID,
				ProductName: product.Name,
				SKU:         product.SKU,
				PriceCents:  product.PriceCents,
				Quantity:    item.Quantity,
			})
			order.SubtotalCents += product.PriceCents * item.Quantity
		}
		order.TotalCents = order.SubtotalCents

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		for _, item := range input.Items {
			if _, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
				ProductID: item.ProductID,
				Counter:   enums.InventoryCounterStock,
				Delta:     -item.Quantity,
				Reason:    ReasonPlacement,
				UserID:    input.CustomerID,
				OrderID:   &order.ID,
			}); err != nil {
				return err
			}
		}

		if s.notifier != nil {
			if err := s.notifier.OrderPlaced(ctx, tx, order); err != nil {
				return err
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// UpdateStatus applies a manual transition through the status machine.
// Entering cancelled restores stock for every unfulfilled item; fulfilled
// items are left untouched.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := findOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(input.Next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition from %s to %s", order.Status, input.Next))
		}

		var cancelledAt *time.Time
		if input.Next == enums.OrderStatusCancelled {
			now := s.now().UTC()
			cancelledAt = &now
			actor := actorPtr(input.ActorID)
			for _, item := range order.Items {
				if item.Fulfilled || item.ProductID == nil {
					continue
				}
				if _, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
					ProductID: *item.ProductID,
					Counter:   enums.InventoryCounterStock,
					Delta:     item.Quantity,
					Reason:    ReasonCancellation,
					UserID:    actor,
					OrderID:   &order.ID,
				}); err != nil {
					return err
				}
			}
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Next, cancelledAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = input.Next
		order.CancelledAt = cancelledAt
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PackItem marks an item fulfilled without touching physical inventory.
// Packing the last item of a pending order advances it to processing.
func (s *service) PackItem(ctx context.Context, input PackItemInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and item id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, item, err := findOrderItem(ctx, repo, input.OrderID, input.ItemID)
		if err != nil {
			return err
		}

		if err := repo.MarkItemFulfilled(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item fulfilled")
		}
		item.Fulfilled = true

		if item.ProductID != nil {
			if _, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
				ProductID: *item.ProductID,
				Counter:   enums.InventoryCounterPhysical,
				Delta:     0,
				Reason:    ReasonPacked,
				UserID:    actorPtr(input.ActorID),
				OrderID:   &order.ID,
			}); err != nil {
				return err
			}
		}

		if allFulfilled(order) && order.Status == enums.OrderStatusPending {
			if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
			}
			order.Status = enums.OrderStatusProcessing
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FulfillItem marks an item fulfilled and decrements physical inventory by
// the fulfilled quantity. Fulfilling the last item advances the order to
// shipped.
func (s *service) FulfillItem(ctx context.Context, input FulfillItemInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and item id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, item, err := findOrderItem(ctx, repo, input.OrderID, input.ItemID)
		if err != nil {
			return err
		}
		if input.Quantity > item.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d exceeds ordered quantity %d", input.Quantity, item.Quantity))
		}
		if item.ProductID == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "product record missing for item")
		}

		if _, err := s.adjuster.Apply(ctx, tx, inventory.ApplyInput{
			ProductID: *item.ProductID,
			Counter:   enums.InventoryCounterPhysical,
			Delta:     -input.Quantity,
			Reason:    ReasonFulfillment,
			UserID:    actorPtr(input.ActorID),
			OrderID:   &order.ID,
		}); err != nil {
			return err
		}

		if err := repo.MarkItemFulfilled(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item fulfilled")
		}
		item.Fulfilled = true

		if allFulfilled(order) {
			if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
			}
			order.Status = enums.OrderStatusShipped
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listOrdersParams{
		Status:     params.Status,
		DayPrefix:  params.DayPrefix,
		CustomerID: params.CustomerID,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Track resolves the public tracking view. A wrong email reads the same as an
// unknown order number so order existence is not leaked.
func (s *service) Track(ctx context.Context, number, email string) (*TrackResult, error) {
	number = strings.TrimSpace(number)
	email = strings.ToLower(strings.TrimSpace(email))
	if number == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email required")
	}

	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !strings.EqualFold(order.CustomerEmail, email) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	result := &TrackResult{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		PlacedAt:    order.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range order.Items {
		result.Items = append(result.Items, TrackItem{
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			Fulfilled:   item.Fulfilled,
		})
	}
	return result, nil
}

func validatePlaceInput(input PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if strings.TrimSpace(input.CustomerName) == "" ||
		strings.TrimSpace(input.CustomerEmail) == "" ||
		strings.TrimSpace(input.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name, email and shipping address required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if _, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

// findOrder loads an order with items, translating not-found.
func findOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// findOrderItem loads the order and locates the target item, enforcing the
// shared pack/fulfill preconditions.
func findOrderItem(ctx context.Context, repo Repository, orderID, itemID uuid.UUID) (*models.Order, *models.OrderItem, error) {
	order, err := findOrder(ctx, repo, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !order.Status.AcceptsFulfillment() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s does not accept fulfillment", order.Status))
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			if order.Items[i].Fulfilled {
				return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "item already fulfilled")
			}
			return order, &order.Items[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
}

// allFulfilled reports whether every item of the loaded order is fulfilled.
func allFulfilled(order *models.Order) bool {
	for _, item := range order.Items {
		if !item.Fulfilled {
			return false
		}
	}
	return len(order.Items) > 0
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
