package controllers

import (
	"io"
	"net/http"

	"github.com/adebayoakin/gearmart-backend/internal/payments"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
	"github.com/adebayoakin/gearmart-backend/pkg/paystack"
)

// PaystackWebhook receives gateway deliveries. It answers with bare status
// codes and no body: the gateway only cares whether to retry, and an invalid
// signature must not leak why it was rejected.
func PaystackWebhook(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = svc.HandleWebhook(r.Context(), payload, r.Header.Get(paystack.SignatureHeader))
		if err == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		if logg != nil {
			logg.Error(r.Context(), "paystack webhook rejected", err)
		}

		typed := pkgerrors.As(err)
		if typed == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch typed.Code() {
		case pkgerrors.CodeUnauthorized:
			w.WriteHeader(http.StatusUnauthorized)
		case pkgerrors.CodeValidation:
			w.WriteHeader(http.StatusBadRequest)
		default:
			// Signal a retryable failure so the gateway redelivers.
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
