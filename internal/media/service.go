package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natebrowery/stockroom-backend/pkg/db/models"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/storage/s3"
)

// objectStore is the slice of the S3 client the media service needs.
type objectStore interface {
	PresignPut(ctx context.Context, objectKey, contentType string, expiry time.Duration) (*s3.PresignedUpload, error)
	HeadObject(ctx context.Context, objectKey string) (int64, error)
}

// Service hands out presigned upload URLs and finalizes completed uploads.
type Service interface {
	Presign(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input PresignInput) (*PresignResult, error)
	Complete(ctx context.Context, actorID uuid.UUID, role enums.UserRole, assetID uuid.UUID) (*models.MediaAsset, error)
}

type service struct {
	repo      Repository
	store     objectStore
	uploadTTL time.Duration
	now       func() time.Time
}

// PresignInput is the upload request payload.
type PresignInput struct {
	Kind        enums.MediaKind `json:"kind"`
	ContentType string          `json:"content_type"`
}

// PresignResult returns everything the client needs to PUT the object.
type PresignResult struct {
	AssetID   uuid.UUID   `json:"asset_id"`
	ObjectKey string      `json:"object_key"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Per-kind MIME allow-list. Uploads outside these types are rejected before
// any storage call is made.
var allowedContentTypes = map[enums.MediaKind][]string{
	enums.MediaKindProductImage:  {"image/png", "image/jpeg", "image/webp"},
	enums.MediaKindShipmentPhoto: {"image/png", "image/jpeg", "image/webp", "image/heic"},
}

var extensionByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// NewService wires the media dependencies. Now is optional and defaults to
// time.Now; tests inject a fixed clock.
func NewService(repo Repository, store objectStore, uploadTTL time.Duration, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media repository required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object store required")
	}
	if uploadTTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, store: store, uploadTTL: uploadTTL, now: now}, nil
}

func (s *service) Presign(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input PresignInput) (*PresignResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	if !canUpload(role, input.Kind) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not upload this media kind")
	}

	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !contentTypeAllowed(input.Kind, contentType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed for media kind").
			WithDetails(map[string]any{
				"kind":    input.Kind,
				"allowed": allowedContentTypes[input.Kind],
			})
	}

	assetID := uuid.New()
	objectKey := buildObjectKey(input.Kind, assetID, contentType, s.now())

	asset := &models.MediaAsset{
		ID:          assetID,
		OwnerUserID: actorID,
		Kind:        input.Kind,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Status:      enums.MediaStatusPending,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media asset")
	}

	upload, err := s.store.PresignPut(ctx, objectKey, contentType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "presign upload url")
	}

	return &PresignResult{
		AssetID:   asset.ID,
		ObjectKey: objectKey,
		URL:       upload.URL,
		Method:    upload.Method,
		Headers:   upload.Headers,
		ExpiresAt: upload.ExpiresAt,
	}, nil
}

// Complete verifies the object landed in the bucket and flips the asset to
// uploaded. Only the owner or an admin may complete an upload.
func (s *service) Complete(ctx context.Context, actorID uuid.UUID, role enums.UserRole, assetID uuid.UUID) (*models.MediaAsset, error) {
	if assetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}

	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media asset")
	}
	if asset.OwnerUserID != actorID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the uploader may complete this asset")
	}
	if asset.Status == enums.MediaStatusUploaded {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "media asset already completed")
	}

	size, err := s.store.HeadObject(ctx, asset.ObjectKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "object not found in storage")
	}

	now := s.now().UTC()
	if err := s.repo.MarkUploaded(ctx, asset.ID, size, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark media uploaded")
	}

	asset.Status = enums.MediaStatusUploaded
	asset.SizeBytes = &size
	asset.UpdatedAt = now
	return asset, nil
}

// Product imagery is catalog content and stays with admins and managers;
// shipment photos come from whoever packed the box.
func canUpload(role enums.UserRole, kind enums.MediaKind) bool {
	switch kind {
	case enums.MediaKindProductImage:
		return role == enums.UserRoleAdmin || role == enums.UserRoleManager
	case enums.MediaKindShipmentPhoto:
		return role.IsBackOffice()
	default:
		return false
	}
}

func contentTypeAllowed(kind enums.MediaKind, contentType string) bool {
	for _, allowed := range allowedContentTypes[kind] {
		if allowed == contentType {
			return true
		}
	}
	return false
}

func buildObjectKey(kind enums.MediaKind, assetID uuid.UUID, contentType string, now time.Time) string {
	ext := extensionByContentType[contentType]
	return fmt.Sprintf("%s/%s/%s%s", kind, now.UTC().Format("2006/01"), assetID, ext)
}
