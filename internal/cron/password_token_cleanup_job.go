package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

// PasswordTokenCleanupJobParams configure the reset token purge.
type PasswordTokenCleanupJobParams struct {
	Logger     *logger.Logger
	Repository resetTokenCleanupRepo
}

type resetTokenCleanupRepo interface {
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
}

// NewPasswordTokenCleanupJob builds the job that purges reset tokens which
// expired or were already redeemed.
func NewPasswordTokenCleanupJob(params PasswordTokenCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("reset token repository required")
	}
	return &passwordTokenCleanupJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type passwordTokenCleanupJob struct {
	logg *logger.Logger
	repo resetTokenCleanupRepo
	now  func() time.Time
}

func (j *passwordTokenCleanupJob) Name() string { return "password-token-cleanup" }

func (j *passwordTokenCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deleted, err := j.repo.DeleteExpiredOrUsed(ctx, now)
	if err != nil {
		return fmt.Errorf("password token cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "password token cleanup complete")
	return nil
}
