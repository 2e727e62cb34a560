package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

const pendingMediaRetentionDays = 7

// PendingMediaCleanupJobParams configure the abandoned upload purge.
type PendingMediaCleanupJobParams struct {
	Logger        *logger.Logger
	MediaRepo     pendingMediaCleanupRepo
	RetentionDays int
}

type pendingMediaCleanupRepo interface {
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewPendingMediaCleanupJob builds the job that drops media rows whose
// presigned upload was never completed.
func NewPendingMediaCleanupJob(params PendingMediaCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MediaRepo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = pendingMediaRetentionDays
	}
	return &pendingMediaCleanupJob{
		logg:          params.Logger,
		repo:          params.MediaRepo,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type pendingMediaCleanupJob struct {
	logg          *logger.Logger
	repo          pendingMediaCleanupRepo
	retentionDays int
	now           func() time.Time
}

func (j *pendingMediaCleanupJob) Name() string { return "pending-media-cleanup" }

func (j *pendingMediaCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)
	deleted, err := j.repo.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pending media cleanup: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "pending media cleanup complete")
	return nil
}
