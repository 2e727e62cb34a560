package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
)

// Repository persists media asset metadata.
type Repository interface {
	Create(ctx context.Context, asset *models.MediaAsset) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error)
	MarkUploaded(ctx context.Context, id uuid.UUID, sizeBytes int64, now time.Time) error
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a media repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, asset *models.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repositoryImpl) MarkUploaded(ctx context.Context, id uuid.UUID, sizeBytes int64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MediaAsset{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.MediaStatusUploaded,
			"size_bytes": sizeBytes,
			"updated_at": now,
		}).Error
}

// DeleteStalePending removes pending rows whose presigned URL expired long
// ago and were never completed.
func (r *repositoryImpl) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.MediaStatusPending, cutoff).
		Delete(&models.MediaAsset{})
	return result.RowsAffected, result.Error
}
