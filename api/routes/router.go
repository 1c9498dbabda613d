package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adebayoakin/gearmart-backend/api/controllers"
	"github.com/adebayoakin/gearmart-backend/api/middleware"
	authsvc "github.com/adebayoakin/gearmart-backend/internal/auth"
	"github.com/adebayoakin/gearmart-backend/internal/cart"
	"github.com/adebayoakin/gearmart-backend/internal/catalog"
	checkoutsvc "github.com/adebayoakin/gearmart-backend/internal/checkout"
	"github.com/adebayoakin/gearmart-backend/internal/orders"
	"github.com/adebayoakin/gearmart-backend/internal/payments"
	"github.com/adebayoakin/gearmart-backend/internal/reports"
	"github.com/adebayoakin/gearmart-backend/pkg/config"
	"github.com/adebayoakin/gearmart-backend/pkg/db"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
	pkgredis "github.com/adebayoakin/gearmart-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    pkgredis.Pinger
	Registry *prometheus.Registry

	Auth     authsvc.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Payments payments.Service
	Reports  reports.Service
}

// NewRouter mounts the storefront API, the admin API, and the operational
// endpoints.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	// Webhooks sit outside auth and session middleware: the gateway is the
	// caller and the signature is the only credential.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paystack", controllers.PaystackWebhook(d.Payments, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
	})

	// Storefront: guest-accessible, actor resolved when a token is present.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.CartSession(cfg.Cart, cfg.App.IsProd(), logg))

		r.Get("/products", controllers.ProductList(d.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(d.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(d.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Post("/items", controllers.CartAddItem(d.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(d.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(d.Checkout, logg))

		r.Get("/orders/{orderNumber}", controllers.OrderDetail(d.Orders, logg))
		r.With(middleware.RequireAuth(cfg.JWT, logg)).
			Get("/orders", controllers.MyOrders(d.Orders, logg))

		r.Post("/payments/{orderNumber}/initialize", controllers.PaymentInitialize(d.Payments, logg))
		r.Get("/payments/callback", controllers.PaymentCallback(d.Payments, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/reports/dashboard", controllers.AdminDashboard(d.Reports, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(d.Catalog, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(d.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(d.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(d.Catalog, logg))
			r.Put("/{categoryId}", controllers.AdminCategoryUpdate(d.Catalog, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(d.Catalog, logg))
		})
	})

	return r
}
