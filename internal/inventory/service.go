package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

// DefaultAdjustReason is used when staff omit a reason on manual adjustments.
const DefaultAdjustReason = "Manual adjustment"

// ReceiveReason is the default reason recorded by warehouse receiving.
const ReceiveReason = "Warehouse receiving"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the staff-facing stock adjustment operations.
type Service interface {
	Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error)
	BulkAdjust(ctx context.Context, input BulkAdjustInput) ([]BulkAdjustEntryResult, error)
	ListLogs(ctx context.Context, params ListLogsParams) (*LogPage, error)
}

// AdjustInput carries one manual stock adjustment.
type AdjustInput struct {
	ProductID uuid.UUID
	Counter   enums.InventoryCounter
	Delta     int
	Reason    string
	ActorID   uuid.UUID
}

// AdjustResult reports the values around the applied delta.
type AdjustResult struct {
	ProductID uuid.UUID              `json:"product_id"`
	Counter   enums.InventoryCounter `json:"counter"`
	Delta     int                    `json:"delta"`
	Previous  int                    `json:"previous"`
	New       int                    `json:"new"`
}

// BulkAdjustInput carries independent adjustment entries.
type BulkAdjustInput struct {
	Entries []AdjustInput
	ActorID uuid.UUID
}

// BulkAdjustEntryResult reports per-entry success or failure. Partial failure
// is expected behavior for bulk adjustment, not an error response.
type BulkAdjustEntryResult struct {
	ProductID uuid.UUID `json:"product_id"`
	OK        bool      `json:"ok"`
	Previous  int       `json:"previous,omitempty"`
	New       int       `json:"new,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ListLogsParams configures the audit view for one product.
type ListLogsParams struct {
	ProductID uuid.UUID
	Limit     int
	Cursor    string
}

// LogPage wraps returned log rows plus the cursor for the next page.
type LogPage struct {
	Items  []models.InventoryLog `json:"items"`
	Cursor string                `json:"cursor"`
}

type service struct {
	repo     Repository
	adjuster Adjuster
	tx       txRunner
}

// NewService wires the inventory service dependencies.
func NewService(repo Repository, adjuster Adjuster, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, adjuster: adjuster, tx: tx}, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !input.Counter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter must be stock or physical_inventory")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	reason := input.Reason
	if reason == "" {
		reason = DefaultAdjustReason
	}

	var applied *ApplyResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var userID *uuid.UUID
		if input.ActorID != uuid.Nil {
			id := input.ActorID
			userID = &id
		}
		result, err := s.adjuster.Apply(ctx, tx, ApplyInput{
			ProductID: input.ProductID,
			Counter:   input.Counter,
			Delta:     input.Delta,
			Reason:    reason,
			UserID:    userID,
		})
		if err != nil {
			return err
		}
		applied = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AdjustResult{
		ProductID: input.ProductID,
		Counter:   input.Counter,
		Delta:     input.Delta,
		Previous:  applied.Previous,
		New:       applied.New,
	}, nil
}

// BulkAdjust runs each entry in its own transaction so one failing product
// never rolls back the rest of the batch.
func (s *service) BulkAdjust(ctx context.Context, input BulkAdjustInput) ([]BulkAdjustEntryResult, error) {
	if len(input.Entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustments list must not be empty")
	}

	results := make([]BulkAdjustEntryResult, 0, len(input.Entries))
	for _, entry := range input.Entries {
		entry.ActorID = input.ActorID
		applied, err := s.Adjust(ctx, entry)
		if err != nil {
			msg := "adjustment failed"
			if typed := pkgerrors.As(err); typed != nil {
				msg = typed.Message()
			}
			results = append(results, BulkAdjustEntryResult{ProductID: entry.ProductID, OK: false, Error: msg})
			continue
		}
		results = append(results, BulkAdjustEntryResult{
			ProductID: entry.ProductID,
			OK:        true,
			Previous:  applied.Previous,
			New:       applied.New,
		})
	}
	return results, nil
}

func (s *service) ListLogs(ctx context.Context, params ListLogsParams) (*LogPage, error) {
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	query := listLogsParams{ProductID: params.ProductID, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListLogs(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory logs")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &LogPage{Items: rows, Cursor: cursor}, nil
}
