package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",              // local storefront dev
	"http://localhost:5173",              // local admin dev
	"https://gearmart.example.com",       // storefront
	"https://admin.gearmart.example.com", // back-office
}

// CORS returns middleware that applies the API's allowed origin policy.
// Credentials stay enabled so the cart session cookie survives cross-origin
// storefront calls.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
