package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

// recipientLister resolves which back-office accounts receive a fan-out.
type recipientLister interface {
	ListActiveByRoles(ctx context.Context, roles ...enums.UserRole) ([]models.User, error)
}

// Service defines notification list/read operations plus the fan-out hooks
// used by order placement and the low stock scan.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	OrderPlaced(ctx context.Context, tx *gorm.DB, order *models.Order) error
	NotifyLowStock(ctx context.Context, product *models.Product) (int, error)
}

type service struct {
	repo       Repository
	recipients recipientLister
}

// ListParams configures pagination for a user's notification feed.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository, recipients recipientLister) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if recipients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipient lister required")
	}
	return &service{repo: repo, recipients: recipients}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// OrderPlaced fans an order_placed notification out to admins and managers
// inside the placement transaction. The dedupe key keeps a retried placement
// from producing duplicate rows.
func (s *service) OrderPlaced(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	recipients, err := s.recipients.ListActiveByRoles(ctx, enums.UserRoleAdmin, enums.UserRoleManager)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notification recipients")
	}

	repo := s.repo.WithTx(tx)
	title := fmt.Sprintf("New order %s", order.OrderNumber)
	message := fmt.Sprintf("%s placed order %s for $%.2f.", order.CustomerName, order.OrderNumber, float64(order.TotalCents)/100)
	for _, user := range recipients {
		key := fmt.Sprintf("order_placed:%s:%s", order.ID, user.ID)
		notification := &models.Notification{
			UserID:    user.ID,
			Kind:      enums.NotificationKindOrderPlaced,
			Title:     title,
			Message:   message,
			DedupeKey: &key,
		}
		if _, err := repo.CreateIfAbsent(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order notification")
		}
	}
	return nil
}

// NotifyLowStock alerts admins and managers that a product fell to or below
// its threshold. Deduped per product while the previous alert is unread, so
// repeated cron runs do not pile up rows. Returns how many rows were created.
func (s *service) NotifyLowStock(ctx context.Context, product *models.Product) (int, error) {
	if product == nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}

	recipients, err := s.recipients.ListActiveByRoles(ctx, enums.UserRoleAdmin, enums.UserRoleManager)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notification recipients")
	}

	title := fmt.Sprintf("Low stock: %s", product.Name)
	message := fmt.Sprintf("%s (%s) is down to %d units (threshold %d).", product.Name, product.SKU, product.Stock, product.MinStockThreshold)
	created := 0
	for _, user := range recipients {
		key := fmt.Sprintf("low_stock:%s:%s", product.ID, user.ID)
		notification := &models.Notification{
			UserID:    user.ID,
			Kind:      enums.NotificationKindLowStock,
			Title:     title,
			Message:   message,
			DedupeKey: &key,
		}
		inserted, err := s.repo.CreateIfAbsent(ctx, notification)
		if err != nil {
			return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create low stock notification")
		}
		if inserted {
			created++
		}
	}
	return created, nil
}
