package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/natebrowery/stockroom-backend/api/middleware"
	productsvc "github.com/natebrowery/stockroom-backend/internal/products"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubProductService struct {
	getPublic  func(ctx context.Context, id uuid.UUID) (*productsvc.PublicProduct, error)
	listPublic func(ctx context.Context, params productsvc.ListPublicParams) (*productsvc.PublicListResult, error)
	create     func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.AdminProduct, error)
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.AdminProduct, error) {
	if s.create == nil {
		panic("unexpected Create")
	}
	return s.create(ctx, input)
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.AdminProduct, error) {
	panic("unexpected Update")
}

func (s *stubProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unexpected Deactivate")
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*productsvc.AdminProduct, error) {
	panic("unexpected Get")
}

func (s *stubProductService) GetPublic(ctx context.Context, id uuid.UUID) (*productsvc.PublicProduct, error) {
	if s.getPublic == nil {
		panic("unexpected GetPublic")
	}
	return s.getPublic(ctx, id)
}

func (s *stubProductService) ListPublic(ctx context.Context, params productsvc.ListPublicParams) (*productsvc.PublicListResult, error) {
	if s.listPublic == nil {
		panic("unexpected ListPublic")
	}
	return s.listPublic(ctx, params)
}

func (s *stubProductService) ListAdmin(ctx context.Context, params productsvc.ListAdminParams) (*productsvc.AdminListResult, error) {
	panic("unexpected ListAdmin")
}

func TestPublicGetProduct(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productID", "not-a-uuid")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

		rec := httptest.NewRecorder()
		PublicGetProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{
			getPublic: func(ctx context.Context, id uuid.UUID) (*productsvc.PublicProduct, error) {
				if id != productID {
					t.Fatalf("unexpected product id %s", id)
				}
				return &productsvc.PublicProduct{ID: id, SKU: "WID-001", Name: "Widget", InStock: true}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productID", productID.String())
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

		rec := httptest.NewRecorder()
		PublicGetProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "WID-001") {
			t.Fatalf("expected product payload, got %s", rec.Body.String())
		}
	})
}

func TestPublicListProducts(t *testing.T) {
	logg := testLogger()

	t.Run("invalid category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?category=gadgetry", nil)
		rec := httptest.NewRecorder()
		PublicListProducts(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad category, got %d", rec.Code)
		}
	})

	t.Run("filters forwarded", func(t *testing.T) {
		var captured productsvc.ListPublicParams
		stub := &stubProductService{
			listPublic: func(ctx context.Context, params productsvc.ListPublicParams) (*productsvc.PublicListResult, error) {
				captured = params
				return &productsvc.PublicListResult{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/products?category=electronics&q=widget&limit=5", nil)
		rec := httptest.NewRecorder()
		PublicListProducts(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Category == nil || *captured.Category != enums.ProductCategoryElectronics {
			t.Fatalf("expected electronics category, got %+v", captured.Category)
		}
		if captured.Query != "widget" || captured.Limit != 5 {
			t.Fatalf("unexpected params %+v", captured)
		}
	})
}

func TestAdminCreateProduct(t *testing.T) {
	logg := testLogger()
	actorID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		body := `{"sku":"WID-001","name":"Widget","category":"electronics","price_cents":1999}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminCreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user context, got %d", rec.Code)
		}
	})

	t.Run("success defaults active", func(t *testing.T) {
		var captured productsvc.CreateProductInput
		stub := &stubProductService{
			create: func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.AdminProduct, error) {
				captured = input
				return &productsvc.AdminProduct{}, nil
			},
		}

		body := `{"sku":"WID-001","name":"Widget","category":"electronics","price_cents":1999,"stock":10,"physical_inventory":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(middleware.WithUserID(req.Context(), actorID.String()))

		rec := httptest.NewRecorder()
		AdminCreateProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !captured.IsActive {
			t.Fatalf("expected IsActive to default true")
		}
		if captured.ActorID != actorID {
			t.Fatalf("expected actor %s, got %s", actorID, captured.ActorID)
		}
		if captured.Stock != 10 || captured.PhysicalInventory != 10 {
			t.Fatalf("unexpected counters %+v", captured)
		}
	})

	t.Run("counters rejected on update body", func(t *testing.T) {
		// price_cents=0 fails the min=1 validation on update.
		req := httptest.NewRequest(http.MethodPut, "/api/admin/products/"+uuid.NewString(), strings.NewReader(`{"price_cents":0}`))
		req.Header.Set("Content-Type", "application/json")
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productID", uuid.NewString())
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

		rec := httptest.NewRecorder()
		AdminUpdateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid price, got %d", rec.Code)
		}
	})
}
