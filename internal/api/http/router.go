package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Listings        *handlers.ListingsHandler
	Users           *handlers.UsersHandler
	Payments        *handlers.PaymentsHandler
	Admin           *handlers.AdminHandler
	AdminMiddleware *auth.AdminMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/users", cfg.Users.Signup)
	api.Get("/listings", cfg.Listings.List)
	api.Get("/listings/:id", cfg.Listings.Get)
	api.Post("/listings", cfg.Listings.Create)
	api.Post("/payments", cfg.Payments.Create)

	admin := api.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	protected := admin.Group("", cfg.AdminMiddleware.Handle)
	protected.Get("/listings", cfg.Admin.ListListings)
	protected.Post("/listings/:id/validate", cfg.Admin.ValidateListing)
	protected.Post("/listings/:id/reject", cfg.Admin.RejectListing)
	protected.Delete("/listings/:id", cfg.Admin.DeleteListing)
	protected.Get("/users", cfg.Admin.ListUsers)
	protected.Delete("/users/:id", cfg.Admin.DeleteUser)
	protected.Get("/payments", cfg.Admin.ListPayments)
	protected.Post("/payments/:id/approve", cfg.Admin.ApprovePayment)
	protected.Post("/payments/:id/reject", cfg.Admin.RejectPayment)
	protected.Get("/stats", cfg.Admin.Stats)
}
