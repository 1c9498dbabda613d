package controllers

import (
	"net/http"

	"github.com/adebayoakin/gearmart-backend/api/middleware"
	"github.com/adebayoakin/gearmart-backend/api/responses"
	"github.com/adebayoakin/gearmart-backend/api/validators"
	"github.com/adebayoakin/gearmart-backend/internal/checkout"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

type checkoutRequest struct {
	Email              string  `json:"email" validate:"required,email"`
	FirstName          string  `json:"first_name" validate:"required"`
	LastName           string  `json:"last_name" validate:"required"`
	Phone              *string `json:"phone,omitempty"`
	ShippingAddress    string  `json:"shipping_address" validate:"required"`
	ShippingCity       string  `json:"shipping_city" validate:"required"`
	ShippingState      string  `json:"shipping_state" validate:"required"`
	ShippingPostalCode *string `json:"shipping_postal_code,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// Checkout turns the session cart into an order. Guests check out with just
// the form; signed-in customers get the order attached to their account.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		order, err := svc.PlaceOrder(r.Context(), sessionID, checkout.Input{
			Email:              req.Email,
			FirstName:          req.FirstName,
			LastName:           req.LastName,
			Phone:              req.Phone,
			ShippingAddress:    req.ShippingAddress,
			ShippingCity:       req.ShippingCity,
			ShippingState:      req.ShippingState,
			ShippingPostalCode: req.ShippingPostalCode,
			Notes:              req.Notes,
		}, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
