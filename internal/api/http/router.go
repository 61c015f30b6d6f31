package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-reservation-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomersHandler
	Reservations   *handlers.ReservationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protected.Post("/password/change", cfg.Auth.ChangePassword)

	reservations := app.Group("/reservations", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	reservations.Get("/customers", cfg.Customers.Search)
	reservations.Get("/customers/new", cfg.Customers.NewForm)
	reservations.Post("/customers", cfg.Customers.Register)
	reservations.Get("/customers/:id/rooms", cfg.Reservations.ChooseRoom)
	reservations.Get("/customers/:id/rooms/:roomID/confirm", cfg.Reservations.Confirm)
	reservations.Post("/customers/:id/rooms/:roomID/pay", cfg.Reservations.Pay)
}
