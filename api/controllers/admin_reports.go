package controllers

import (
	"net/http"

	"github.com/adebayoakin/gearmart-backend/api/responses"
	"github.com/adebayoakin/gearmart-backend/internal/reports"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

// AdminDashboard serves the weekly revenue/orders/customers overview.
func AdminDashboard(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
