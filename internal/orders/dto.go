package orders

import (
	"github.com/google/uuid"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// PlaceOrderInput carries a storefront checkout request. CustomerID is set for
// account-holding customers and nil for guest checkout.
type PlaceOrderInput struct {
	CustomerID      *uuid.UUID
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	ShippingAddress string
	Notes           *string
	Items           []PlaceOrderItem
}

// PlaceOrderItem references a catalog product and the requested quantity.
type PlaceOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Shortfall itemizes one line that could not be reserved.
type Shortfall struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// UpdateStatusInput carries a manual status transition request.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Next    enums.OrderStatus
	ActorID uuid.UUID
}

// PackItemInput marks an item staged for shipment without touching the
// physical counter.
type PackItemInput struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
	ActorID uuid.UUID
}

// FulfillItemInput marks an item picked from the warehouse, decrementing
// physical inventory by Quantity.
type FulfillItemInput struct {
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	Quantity int
	ActorID  uuid.UUID
}

// ListParams filters the staff order list. DayPrefix matches the MMDDYY
// segment of the order number. CustomerID scopes the list to one account's
// own orders.
type ListParams struct {
	Status     *enums.OrderStatus
	DayPrefix  string
	CustomerID *uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult wraps one page of orders plus the cursor for the next page.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// TrackResult is the public order-tracking view: status plus item snapshots,
// nothing the customer did not already supply.
type TrackResult struct {
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	PlacedAt    string            `json:"placed_at"`
	Items       []TrackItem       `json:"items"`
}

// TrackItem is one line of the tracking view.
type TrackItem struct {
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	Fulfilled   bool   `json:"fulfilled"`
}
