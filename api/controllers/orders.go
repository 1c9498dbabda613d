package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adebayoakin/gearmart-backend/api/middleware"
	"github.com/adebayoakin/gearmart-backend/api/responses"
	"github.com/adebayoakin/gearmart-backend/api/validators"
	"github.com/adebayoakin/gearmart-backend/internal/orders"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
	"github.com/adebayoakin/gearmart-backend/pkg/pagination"
)

// OrderDetail serves the confirmation view for one order.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		order, err := svc.GetByOrderNumber(r.Context(), chi.URLParam(r, "orderNumber"), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MyOrders lists the authenticated customer's orders.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMine(r.Context(), actor.UserID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
