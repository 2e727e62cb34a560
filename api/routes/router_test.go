package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/internal/notifications"
	"github.com/natebrowery/stockroom-backend/internal/orders"
	"github.com/natebrowery/stockroom-backend/internal/products"
	pkgAuth "github.com/natebrowery/stockroom-backend/pkg/auth"
	"github.com/natebrowery/stockroom-backend/pkg/auth/session"
	"github.com/natebrowery/stockroom-backend/pkg/config"
	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
	"github.com/natebrowery/stockroom-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubProductService struct{}

func (stubProductService) Create(ctx context.Context, input products.CreateProductInput) (*products.AdminProduct, error) {
	panic("unimplemented")
}

func (stubProductService) Update(ctx context.Context, id uuid.UUID, input products.UpdateProductInput) (*products.AdminProduct, error) {
	panic("unimplemented")
}

func (stubProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) Get(ctx context.Context, id uuid.UUID) (*products.AdminProduct, error) {
	panic("unimplemented")
}

func (stubProductService) GetPublic(ctx context.Context, id uuid.UUID) (*products.PublicProduct, error) {
	panic("unimplemented")
}

func (stubProductService) ListPublic(ctx context.Context, params products.ListPublicParams) (*products.PublicListResult, error) {
	return &products.PublicListResult{}, nil
}

func (stubProductService) ListAdmin(ctx context.Context, params products.ListAdminParams) (*products.AdminListResult, error) {
	return &products.AdminListResult{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Place(ctx context.Context, input orders.PlaceOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) PackItem(ctx context.Context, input orders.PackItemInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) FulfillItem(ctx context.Context, input orders.FulfillItemInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, params orders.ListParams) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func (stubOrdersService) Track(ctx context.Context, number, email string) (*orders.TrackResult, error) {
	panic("unimplemented")
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) OrderPlaced(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return nil
}

func (stubNotificationsService) NotifyLowStock(ctx context.Context, product *models.Product) (int, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-test-secret-test-1234",
			Issuer:            "stockroom-test",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
		Session: config.SessionConfig{CookieName: "stockroom_session"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		Services{
			Products:      stubProductService{},
			Orders:        stubOrdersService{},
			Notifications: stubNotificationsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestStorefrontIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestBackOfficeRejectsCustomers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff got %d", resp.Code)
	}
}

func TestCatalogWritesRequireManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	staff := httptest.NewRequest(http.MethodPost, "/api/admin/products", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff product create got %d", resp.Code)
	}

	// Staff still read the catalog.
	read := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	read.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, read)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff catalog read got %d", resp.Code)
	}
}

func TestUserAdminRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	manager := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager on user admin got %d", resp.Code)
	}
}

func TestNotificationsRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous feed got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed feed got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMyOrdersScopedToToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/me/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for my orders got %d", resp.Code)
	}
}
