package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

// LowStockJobParams configure the low stock scan.
type LowStockJobParams struct {
	Logger   *logger.Logger
	Products lowStockReader
	Notifier lowStockNotifier
}

type lowStockReader interface {
	ListBelowThreshold(ctx context.Context) ([]models.Product, error)
}

type lowStockNotifier interface {
	NotifyLowStock(ctx context.Context, product *models.Product) (int, error)
}

// NewLowStockJob builds the job that alerts the back office about products
// at or below their restock threshold.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &lowStockJob{
		logg:     params.Logger,
		products: params.Products,
		notifier: params.Notifier,
	}, nil
}

type lowStockJob struct {
	logg     *logger.Logger
	products lowStockReader
	notifier lowStockNotifier
}

func (j *lowStockJob) Name() string { return "low-stock-scan" }

// Run continues past per-product failures so one bad row cannot starve the
// rest of the scan; the combined error still fails the job run.
func (j *lowStockJob) Run(ctx context.Context) error {
	rows, err := j.products.ListBelowThreshold(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}

	var (
		errs    []error
		created int
	)
	for i := range rows {
		count, err := j.notifier.NotifyLowStock(ctx, &rows[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("notify for %s: %w", rows[i].SKU, err))
			continue
		}
		created += count
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"products_low":          len(rows),
		"notifications_created": created,
		"failures":              len(errs),
	})
	j.logg.Info(logCtx, "low stock scan complete")
	return multierr.Combine(errs...)
}
