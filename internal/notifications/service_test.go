package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	paginationpkg "github.com/natebrowery/stockroom-backend/pkg/pagination"
)

type fakeRepository struct {
	created        []*models.Notification
	existingDedupe map[string]bool

	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepository) CreateIfAbsent(ctx context.Context, notification *models.Notification) (bool, error) {
	if notification.DedupeKey != nil && f.existingDedupe[*notification.DedupeKey] {
		return false, nil
	}
	f.created = append(f.created, notification)
	return true, nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeRecipients struct {
	users []models.User
	err   error
}

func (f *fakeRecipients) ListActiveByRoles(ctx context.Context, roles ...enums.UserRole) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func newServiceWithRepo(repo Repository, recipients recipientLister) Service {
	if recipients == nil {
		recipients = &fakeRecipients{}
	}
	svc, _ := NewService(repo, recipients)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != paginationpkg.LimitWithBuffer(1) {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo, nil)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, nil)
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	errCode := pkgerrors.As(err).Code()
	if errCode != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", errCode)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo, nil)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_MarkAllReadError(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo, nil)
	if _, err := svc.MarkAllRead(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_OrderPlacedFansOutToBackOffice(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	manager := models.User{ID: uuid.New(), Role: enums.UserRoleManager}
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo, &fakeRecipients{users: []models.User{admin, manager}})

	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "083026-1",
		CustomerName: "Dana Smith",
		TotalCents:   4599,
	}
	if err := svc.OrderPlaced(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected order placed error: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	got := repo.created[0]
	if got.Kind != enums.NotificationKindOrderPlaced {
		t.Fatalf("expected order_placed kind, got %s", got.Kind)
	}
	if got.UserID != admin.ID {
		t.Fatalf("expected admin recipient, got %s", got.UserID)
	}
	if got.DedupeKey == nil || *got.DedupeKey != "order_placed:"+order.ID.String()+":"+admin.ID.String() {
		t.Fatalf("unexpected dedupe key %v", got.DedupeKey)
	}
}

func TestService_NotifyLowStockDedupes(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	manager := models.User{ID: uuid.New(), Role: enums.UserRoleManager}
	product := &models.Product{
		ID:                uuid.New(),
		SKU:               "SKU-LOW",
		Name:              "Canvas Tote",
		Stock:             2,
		MinStockThreshold: 5,
	}
	repo := &fakeRepository{
		existingDedupe: map[string]bool{
			"low_stock:" + product.ID.String() + ":" + admin.ID.String(): true,
		},
	}
	svc := newServiceWithRepo(repo, &fakeRecipients{users: []models.User{admin, manager}})

	created, err := svc.NotifyLowStock(context.Background(), product)
	if err != nil {
		t.Fatalf("unexpected low stock error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 new notification past the dedupe, got %d", created)
	}
	got := repo.created[0]
	if got.UserID != manager.ID || got.Kind != enums.NotificationKindLowStock {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestService_NotifyLowStockRecipientError(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{}, &fakeRecipients{err: errors.New("db down")})
	if _, err := svc.NotifyLowStock(context.Background(), &models.Product{ID: uuid.New()}); err == nil {
		t.Fatal("expected error when recipients cannot be listed")
	}
}
