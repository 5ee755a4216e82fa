package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/handlers"
	"github.com/jessejferrell/Events-Hub-sub001/internal/middleware"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// Handlers collects the HTTP handlers the router mounts
type Handlers struct {
	Auth          *handlers.AuthHandler
	Events        *handlers.EventHandler
	Products      *handlers.ProductHandler
	Cart          *handlers.CartHandler
	Registrations *handlers.RegistrationHandler
	Checkout      *handlers.CheckoutHandler
	Orders        *handlers.OrderHandler
	Webhooks      *handlers.WebhookHandler
	Connect       *handlers.ConnectHandler
	Reports       *handlers.ReportHandler
	Health        *handlers.HealthHandler
}

// Middleware collects the cross-cutting middleware the router applies
type Middleware struct {
	Auth         *middleware.AuthMiddleware
	CSRF         *middleware.CSRFMiddleware
	CORS         middleware.CORSConfig
	LoginLimiter *middleware.RateLimiter
}

// NewRouter builds the full route tree. The webhook endpoint sits
// outside the session-aware group: the payment processor authenticates
// with its signature header, not a cookie.
func NewRouter(h Handlers, m Middleware, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(m.CORS))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", h.Health.Check)

	r.Post("/api/webhooks/stripe", h.Webhooks.HandleStripe)

	r.Group(func(r chi.Router) {
		r.Use(m.Auth.LoadUser)
		r.Use(m.CSRF.EnsureCSRFToken)
		r.Use(m.CSRF.CSRFProtection)

		r.Route("/api/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(m.LoginLimiter)).Post("/register", h.Auth.Register)
			r.With(middleware.RateLimit(m.LoginLimiter)).Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", h.Auth.Me)
				r.Post("/password", h.Auth.ChangePassword)
			})
		})

		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", h.Events.List)
			r.Get("/{slug}", h.Events.Get)
			r.Get("/{slug}/products", h.Products.ListPublic)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/api/cart", func(r chi.Router) {
				r.Get("/", h.Cart.Get)
				r.Delete("/", h.Cart.Clear)
				r.Post("/items", h.Cart.AddItem)
				r.Patch("/items/{itemID}", h.Cart.UpdateItem)
				r.Delete("/items/{itemID}", h.Cart.RemoveItem)
			})

			r.Route("/api/registrations", func(r chi.Router) {
				r.Get("/vendor/{itemID}", h.Registrations.PrefillVendor)
				r.Post("/vendor/{itemID}", h.Registrations.SubmitVendor)
				r.Get("/volunteer/{itemID}", h.Registrations.PrefillVolunteer)
				r.Post("/volunteer/{itemID}", h.Registrations.SubmitVolunteer)
			})

			r.Route("/api/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Start)
				r.Get("/confirm", h.Checkout.Confirm)
			})

			r.Route("/api/orders", func(r chi.Router) {
				r.Get("/", h.Orders.List)
				r.Get("/{id}", h.Orders.Get)
				r.Post("/{id}/cancel", h.Orders.Cancel)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleOrganizer))

			r.Route("/api/organizer/events", func(r chi.Router) {
				r.Get("/", h.Events.ListOwn)
				r.Post("/", h.Events.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", h.Events.Update)
					r.Delete("/", h.Events.Delete)
					r.Post("/publish", h.Events.Publish)
					r.Post("/cancel", h.Events.Cancel)
					r.Post("/flyer", h.Events.UploadFlyer)
					r.Get("/products", h.Products.ListForEvent)
					r.Get("/products/sold", h.Products.SoldCounts)
					r.Get("/registrations", h.Registrations.ListForEvent)
				})
			})

			r.Route("/api/organizer/products", func(r chi.Router) {
				r.Post("/", h.Products.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Products.Get)
					r.Patch("/", h.Products.Update)
					r.Delete("/", h.Products.Delete)
					r.Post("/deactivate", h.Products.Deactivate)
				})
			})

			r.Route("/api/connect", func(r chi.Router) {
				r.Post("/account", h.Connect.Onboard)
				r.Post("/account-link", h.Connect.Onboard)
				r.Get("/status", h.Connect.Status)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Route("/api/admin/reports", func(r chi.Router) {
				r.Get("/transactions", h.Reports.Transactions)
				r.Get("/transactions/export", h.Reports.ExportTransactions)
				r.Get("/summary", h.Reports.Summary)
			})
		})
	})

	return r
}
