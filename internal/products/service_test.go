package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, product *models.Product) error
	updateFn    func(ctx context.Context, product *models.Product) error
	findByIDFn  func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	findBySKUFn func(ctx context.Context, sku string) (*models.Product, error)
	listFn      func(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, product *models.Product) error {
	if f.createFn != nil {
		return f.createFn(ctx, product)
	}
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, product *models.Product) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, product)
	}
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if f.findBySKUFn != nil {
		return f.findBySKUFn(ctx, sku)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) ListBelowThreshold(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

type fakeAdjuster struct {
	applies []inventory.ApplyInput
}

func (f *fakeAdjuster) Apply(ctx context.Context, tx *gorm.DB, input inventory.ApplyInput) (*inventory.ApplyResult, error) {
	f.applies = append(f.applies, input)
	return &inventory.ApplyResult{Previous: 0, New: input.Delta}, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, adjuster inventory.Adjuster) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, adjuster)
	if err != nil {
		t.Fatalf("unexpected service constructor error: %v", err)
	}
	return svc
}

func TestService_Create_seedsCountersThroughAudit(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, product *models.Product) error {
			product.ID = uuid.New()
			return nil
		},
	}
	adjuster := &fakeAdjuster{}
	svc := newTestService(t, repo, adjuster)

	created, err := svc.Create(context.Background(), CreateProductInput{
		SKU:               "TEE-RED-M",
		Name:              "Red Tee",
		Category:          enums.ProductCategoryApparel,
		PriceCents:        1999,
		Stock:             25,
		PhysicalInventory: 25,
		MinStockThreshold: 5,
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if created.Stock != 25 || created.PhysicalInventory != 25 {
		t.Fatalf("expected counters seeded, got stock=%d physical=%d", created.Stock, created.PhysicalInventory)
	}
	if len(adjuster.applies) != 2 {
		t.Fatalf("expected 2 audited seeds, got %d", len(adjuster.applies))
	}
	for _, apply := range adjuster.applies {
		if apply.Reason != InitialStockReason || apply.Delta != 25 {
			t.Fatalf("unexpected seed apply %+v", apply)
		}
	}
}

func TestService_Create_zeroCountersSkipAudit(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, product *models.Product) error {
			product.ID = uuid.New()
			return nil
		},
	}
	adjuster := &fakeAdjuster{}
	svc := newTestService(t, repo, adjuster)

	_, err := svc.Create(context.Background(), CreateProductInput{
		SKU:      "TEE-BLU-M",
		Name:     "Blue Tee",
		Category: enums.ProductCategoryApparel,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if len(adjuster.applies) != 0 {
		t.Fatalf("zero counters must not write audit rows, got %d", len(adjuster.applies))
	}
}

func TestService_Create_duplicateSKU(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, product *models.Product) error {
			return errors.New(`ERROR: duplicate key value violates unique constraint "idx_products_sku"`)
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})

	_, err := svc.Create(context.Background(), CreateProductInput{
		SKU:      "TEE-RED-M",
		Name:     "Red Tee",
		Category: enums.ProductCategoryApparel,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate sku, got %v", err)
	}
}

func TestService_Create_invalidCategory(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeAdjuster{})
	_, err := svc.Create(context.Background(), CreateProductInput{
		SKU:      "X-1",
		Name:     "X",
		Category: enums.ProductCategory("gadgetry"),
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_Update_partial(t *testing.T) {
	existing := &models.Product{
		ID:         uuid.New(),
		SKU:        "TEE-RED-M",
		Name:       "Red Tee",
		Category:   enums.ProductCategoryApparel,
		PriceCents: 1999,
		Stock:      10,
		IsActive:   true,
	}
	var saved *models.Product
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, product *models.Product) error {
			saved = product
			return nil
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})

	price := 2499
	updated, err := svc.Update(context.Background(), existing.ID, UpdateProductInput{PriceCents: &price})
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if saved.PriceCents != 2499 || updated.PriceCents != 2499 {
		t.Fatalf("expected price update, got %d", saved.PriceCents)
	}
	if saved.Name != "Red Tee" || saved.Stock != 10 {
		t.Fatalf("untouched fields must survive, got %+v", saved)
	}
}

func TestService_Deactivate(t *testing.T) {
	existing := &models.Product{ID: uuid.New(), SKU: "TEE-1", Name: "Tee", IsActive: true}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return existing, nil
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})

	if err := svc.Deactivate(context.Background(), existing.ID); err != nil {
		t.Fatalf("unexpected deactivate error: %v", err)
	}
	if existing.IsActive {
		t.Fatal("expected product deactivated")
	}
	if err := svc.Deactivate(context.Background(), existing.ID); err == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for double deactivation, got %v", err)
	}
}

func TestService_GetPublic_hidesInactive(t *testing.T) {
	inactive := &models.Product{ID: uuid.New(), SKU: "OLD-1", Name: "Retired", IsActive: false}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return inactive, nil
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})
	if _, err := svc.GetPublic(context.Background(), inactive.ID); err == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("inactive product must read as missing, got %v", err)
	}
}

func TestService_ListPublic_projectsInStock(t *testing.T) {
	rows := []models.Product{
		{ID: uuid.New(), SKU: "A-1", Name: "A", Stock: 3, IsActive: true},
		{ID: uuid.New(), SKU: "B-1", Name: "B", Stock: 0, IsActive: true},
	}
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
			if !params.ActiveOnly {
				t.Fatal("storefront list must filter to active products")
			}
			return rows, nil, nil
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})

	result, err := svc.ListPublic(context.Background(), ListPublicParams{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if !result.Items[0].InStock || result.Items[1].InStock {
		t.Fatalf("unexpected in_stock flags %+v", result.Items)
	}
}

func TestService_ListAdmin_lowStockFilter(t *testing.T) {
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
			if !params.LowStockOnly {
				t.Fatal("expected low stock filter passed through")
			}
			return []models.Product{{ID: uuid.New(), SKU: "LOW-1", Name: "Low", Stock: 1, MinStockThreshold: 5}}, nil, nil
		},
	}
	svc := newTestService(t, repo, &fakeAdjuster{})

	result, err := svc.ListAdmin(context.Background(), ListAdminParams{LowStockOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 || !result.Items[0].IsLowStock {
		t.Fatalf("expected low stock projection, got %+v", result.Items)
	}
}
