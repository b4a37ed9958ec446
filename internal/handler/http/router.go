// Package http exposes the storefront over a chi router.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Products *service.ProductService
	Users    *service.UserService
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Admin    *service.AdminService
	Health   *health.Handler

	Tokens middleware.TokenValidator
	CORS   middleware.CORSConfig

	// AuthRPS and AuthBurst limit sign-in and sign-up per client IP.
	AuthRPS   float64
	AuthBurst int

	Logger *slog.Logger
}

// NewRouter creates a chi router with every storefront route registered.
// ctx bounds background work started by middleware.
func NewRouter(ctx context.Context, d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.CORS(d.CORS))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(d.Logger))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	products := NewProductHandler(d.Products, d.Logger)
	auth := NewAuthHandler(d.Users, d.Carts, d.Logger)
	carts := NewCartHandler(d.Carts, d.Logger)
	checkout := NewCheckoutHandler(d.Checkout, d.Logger)
	admin := NewAdminHandler(d.Admin, d.Products, d.Users, d.Logger)
	uploads := NewUploadHandler(d.Logger)

	requireAuth := middleware.Auth(d.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.CacheControl(30))
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(ctx, d.AuthRPS, d.AuthBurst, d.Logger))
				r.Post("/signup", auth.Signup)
				r.Post("/signin", auth.Signin)
			})
			r.With(requireAuth).Post("/signout", auth.Signout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(ContentTypeJSON)
			r.Get("/", carts.Get)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{productID}", carts.UpdateItem)
			r.Delete("/items/{productID}", carts.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(ContentTypeJSON)
			r.Post("/pay", checkout.Pay)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Post("/uploads", uploads.Upload)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Get("/overview", admin.Overview)

				r.Get("/products", admin.ListProducts)
				r.Post("/products", admin.CreateProduct)
				r.Put("/products/{id}", admin.UpdateProduct)
				r.Delete("/products/{id}", admin.DeleteProduct)

				r.Get("/users", admin.ListUsers)
				r.Post("/users", admin.CreateUser)
				r.Delete("/users/{id}", admin.DeleteUser)
			})
		})
	})

	return r
}
