package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/natebrowery/stockroom-backend/api/responses"
	reportsvc "github.com/natebrowery/stockroom-backend/internal/reports"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

// SalesReport aggregates the order book over ?from=&to= (RFC 3339 or
// YYYY-MM-DD). The default window is the last 30 days.
func SalesReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		now := time.Now().UTC()
		from := now.AddDate(0, 0, -30)
		to := now

		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			parsed, err := parseReportTime(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			from = parsed
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			parsed, err := parseReportTime(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			to = parsed
		}

		report, err := svc.SalesReport(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// InventoryReport lists low-stock products and values stock on hand.
func InventoryReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		report, err := svc.InventoryReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func parseReportTime(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time value")
	}
	return parsed, nil
}
