package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/pagination"
)

type fakeLogRepo struct {
	listLogsFn func(ctx context.Context, params listLogsParams) ([]models.InventoryLog, *pagination.Cursor, error)
}

func (f *fakeLogRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeLogRepo) ListLogs(ctx context.Context, params listLogsParams) ([]models.InventoryLog, *pagination.Cursor, error) {
	if f.listLogsFn != nil {
		return f.listLogsFn(ctx, params)
	}
	return nil, nil, nil
}

type stubAdjuster struct {
	applies []ApplyInput
	applyFn func(input ApplyInput) (*ApplyResult, error)
}

func (s *stubAdjuster) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*ApplyResult, error) {
	s.applies = append(s.applies, input)
	if s.applyFn != nil {
		return s.applyFn(input)
	}
	return &ApplyResult{Previous: 10, New: 10 + input.Delta}, nil
}

type noopTxRunner struct{}

func (noopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newInventoryService(t *testing.T, repo Repository, adjuster Adjuster) Service {
	t.Helper()
	svc, err := NewService(repo, adjuster, noopTxRunner{})
	if err != nil {
		t.Fatalf("unexpected service constructor error: %v", err)
	}
	return svc
}

func TestService_Adjust_defaultsReason(t *testing.T) {
	adjuster := &stubAdjuster{}
	svc := newInventoryService(t, &fakeLogRepo{}, adjuster)

	actor := uuid.New()
	result, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: uuid.New(),
		Counter:   enums.InventoryCounterStock,
		Delta:     5,
		ActorID:   actor,
	})
	if err != nil {
		t.Fatalf("unexpected adjust error: %v", err)
	}
	if result.Previous != 10 || result.New != 15 {
		t.Fatalf("unexpected result %+v", result)
	}
	apply := adjuster.applies[0]
	if apply.Reason != DefaultAdjustReason {
		t.Fatalf("expected default reason, got %q", apply.Reason)
	}
	if apply.UserID == nil || *apply.UserID != actor {
		t.Fatal("expected actor attribution on audit row")
	}
}

func TestService_Adjust_rejectsZeroDelta(t *testing.T) {
	svc := newInventoryService(t, &fakeLogRepo{}, &stubAdjuster{})
	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: uuid.New(),
		Counter:   enums.InventoryCounterStock,
		Delta:     0,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_Adjust_rejectsUnknownCounter(t *testing.T) {
	svc := newInventoryService(t, &fakeLogRepo{}, &stubAdjuster{})
	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: uuid.New(),
		Counter:   enums.InventoryCounter("virtual"),
		Delta:     1,
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_BulkAdjust_partialFailure(t *testing.T) {
	good := uuid.New()
	bad := uuid.New()
	adjuster := &stubAdjuster{
		applyFn: func(input ApplyInput) (*ApplyResult, error) {
			if input.ProductID == bad {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for BAD-1")
			}
			return &ApplyResult{Previous: 4, New: 4 + input.Delta}, nil
		},
	}
	svc := newInventoryService(t, &fakeLogRepo{}, adjuster)

	results, err := svc.BulkAdjust(context.Background(), BulkAdjustInput{
		Entries: []AdjustInput{
			{ProductID: good, Counter: enums.InventoryCounterStock, Delta: 2},
			{ProductID: bad, Counter: enums.InventoryCounterStock, Delta: -9},
		},
	})
	if err != nil {
		t.Fatalf("bulk adjust must not fail as a whole: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entry results, got %d", len(results))
	}
	if !results[0].OK || results[0].New != 6 {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Fatalf("expected failed second entry, got %+v", results[1])
	}
}

func TestService_BulkAdjust_emptyEntries(t *testing.T) {
	svc := newInventoryService(t, &fakeLogRepo{}, &stubAdjuster{})
	if _, err := svc.BulkAdjust(context.Background(), BulkAdjustInput{}); err == nil {
		t.Fatal("expected validation error for empty batch")
	}
}

func TestService_ListLogs_invalidCursor(t *testing.T) {
	svc := newInventoryService(t, &fakeLogRepo{}, &stubAdjuster{})
	_, err := svc.ListLogs(context.Background(), ListLogsParams{ProductID: uuid.New(), Cursor: "bad"})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
