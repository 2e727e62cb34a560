package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT 'other',
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  physical_inventory INTEGER NOT NULL DEFAULT 0,
  min_stock_threshold INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, sku, name string, category enums.ProductCategory, stock, threshold int, active bool, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:                uuid.New(),
		SKU:               sku,
		Name:              name,
		Category:          category,
		PriceCents:        1000,
		Stock:             stock,
		MinStockThreshold: threshold,
		IsActive:          active,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindBySKU(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seeded := seedCatalogProduct(t, db, "FIND-SKU-1", "Findable", enums.ProductCategoryHome, 5, 0, true, now)

	found, err := repo.FindBySKU(context.Background(), "FIND-SKU-1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindBySKU(context.Background(), "FIND-SKU-missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryList_activeAndSearch(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedCatalogProduct(t, db, "LIST-A-1", "Canvas Tote", enums.ProductCategoryAccessories, 5, 0, true, now.Add(-time.Minute))
	seedCatalogProduct(t, db, "LIST-A-2", "Canvas Sneaker", enums.ProductCategoryFootwear, 5, 0, true, now)
	seedCatalogProduct(t, db, "LIST-A-3", "Hidden Canvas", enums.ProductCategoryAccessories, 5, 0, false, now)

	rows, _, err := repo.List(context.Background(), listProductsParams{Query: "canvas", ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	category := enums.ProductCategoryFootwear
	rows, _, err = repo.List(context.Background(), listProductsParams{Category: &category, ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "LIST-A-2", rows[0].SKU)
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedCatalogProduct(t, db, "PAGE-1", "Pager One", enums.ProductCategoryToys, 5, 0, true, now.Add(-time.Minute))
	seedCatalogProduct(t, db, "PAGE-2", "Pager Two", enums.ProductCategoryToys, 5, 0, true, now)

	first, cursor, err := repo.List(context.Background(), listProductsParams{Query: "pager", Limit: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "PAGE-2", first[0].SKU)
	require.NotNil(t, cursor)

	second, next, err := repo.List(context.Background(), listProductsParams{Query: "pager", Limit: 1, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "PAGE-1", second[0].SKU)
	assert.Nil(t, next)
}

func TestRepositoryListBelowThreshold(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedCatalogProduct(t, db, "THRESH-1", "Low Widget", enums.ProductCategoryOther, 2, 5, true, now)
	seedCatalogProduct(t, db, "THRESH-2", "Healthy Widget", enums.ProductCategoryOther, 50, 5, true, now)
	seedCatalogProduct(t, db, "THRESH-3", "No Alert Widget", enums.ProductCategoryOther, 0, 0, true, now)
	seedCatalogProduct(t, db, "THRESH-4", "Inactive Widget", enums.ProductCategoryOther, 1, 5, false, now)

	rows, err := repo.ListBelowThreshold(context.Background())
	require.NoError(t, err)

	skus := make([]string, 0, len(rows))
	for _, row := range rows {
		skus = append(skus, row.SKU)
	}
	assert.Contains(t, skus, "THRESH-1")
	assert.NotContains(t, skus, "THRESH-2")
	assert.NotContains(t, skus, "THRESH-3")
	assert.NotContains(t, skus, "THRESH-4")
}
