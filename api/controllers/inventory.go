package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/natebrowery/stockroom-backend/api/responses"
	"github.com/natebrowery/stockroom-backend/api/validators"
	inventorysvc "github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

type adjustInventoryRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Counter   string `json:"counter" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

type bulkAdjustInventoryRequest struct {
	Entries []adjustInventoryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (req adjustInventoryRequest) toInput(actorID uuid.UUID) (inventorysvc.AdjustInput, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return inventorysvc.AdjustInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	counter, err := enums.ParseInventoryCounter(strings.TrimSpace(req.Counter))
	if err != nil {
		return inventorysvc.AdjustInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid counter")
	}
	return inventorysvc.AdjustInput{
		ProductID: productID,
		Counter:   counter,
		Delta:     req.Delta,
		Reason:    validators.SanitizeString(req.Reason, 200),
		ActorID:   actorID,
	}, nil
}

// AdjustInventory applies one manual counter adjustment.
func AdjustInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustInventoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput(actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Adjust(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BulkAdjustInventory applies independent adjustments; per-entry failures are
// reported in the response body, not as an error status.
func BulkAdjustInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bulkAdjustInventoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventorysvc.BulkAdjustInput{ActorID: actorID}
		for _, entry := range body.Entries {
			converted, err := entry.toInput(actorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Entries = append(input.Entries, converted)
		}

		results, err := svc.BulkAdjust(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

// ListInventoryLogs pages a product's audit trail, newest first.
func ListInventoryLogs(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventorysvc.ListLogsParams{
			ProductID: productID,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		limit, err := parseLimitParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		page, err := svc.ListLogs(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
