package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
)

// ResetTokenRepository stores hashed password reset tokens.
type ResetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository binds the repository to the provided DB.
func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create inserts a reset token row.
func (r *ResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindByHash loads the token row matching the provided sha256 hash.
func (r *ResetTokenRepository) FindByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed stamps used_at so the token can never be redeemed twice.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ?", id).
		UpdateColumn("used_at", at).Error
}

// DeleteExpiredOrUsed purges rows that can no longer be redeemed. Returns the
// number of deleted rows for cron metrics.
func (r *ResetTokenRepository) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
