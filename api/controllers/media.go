package controllers

import (
	"net/http"
	"strings"

	"github.com/natebrowery/stockroom-backend/api/middleware"
	"github.com/natebrowery/stockroom-backend/api/responses"
	"github.com/natebrowery/stockroom-backend/api/validators"
	mediasvc "github.com/natebrowery/stockroom-backend/internal/media"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

type presignMediaRequest struct {
	Kind        string `json:"kind" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// PresignMedia hands out a presigned PUT URL and records a pending asset.
func PresignMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body presignMediaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMediaKind(strings.TrimSpace(body.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media kind"))
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		result, err := svc.Presign(r.Context(), actorID, role, mediasvc.PresignInput{
			Kind:        kind,
			ContentType: body.ContentType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CompleteMedia verifies the upload landed and flips the asset to uploaded.
func CompleteMedia(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := parseIDParam(r, "assetID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		asset, err := svc.Complete(r.Context(), actorID, role, assetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}
