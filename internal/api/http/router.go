package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/http/handlers"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Put("/me", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)
	authGroup.Put("/password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	customer := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleCustomer))
	customer.Post("/products", cfg.Products.Register)
	customer.Get("/products", cfg.Products.List)
	customer.Get("/products/:id", cfg.Products.Get)
	customer.Put("/products/:id", cfg.Products.Update)
	customer.Delete("/products/:id", cfg.Products.Delete)

	customer.Post("/tickets", cfg.Tickets.Create)
	customer.Get("/tickets", cfg.Tickets.List)
	customer.Get("/tickets/:id", cfg.Tickets.Get)
	customer.Post("/tickets/:id/pay", cfg.Tickets.Pay)
	customer.Post("/tickets/:id/feedback", cfg.Tickets.AddFeedback)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin))
	staff.Get("/tickets", cfg.StaffTickets.ListAssigned)
	staff.Get("/tickets/:id", cfg.StaffTickets.Get)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Post("/tickets/:id/notes", cfg.StaffTickets.AddNote)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/accounts", cfg.Admin.ListAccounts)
	admin.Post("/accounts", cfg.Auth.RegisterStaff)
	admin.Get("/accounts/:id", cfg.Admin.GetAccount)
	admin.Patch("/accounts/:id/role", cfg.Admin.ChangeRole)
	admin.Post("/accounts/:id/activate", cfg.Admin.Activate)
	admin.Post("/accounts/:id/deactivate", cfg.Admin.Deactivate)
	admin.Delete("/accounts/:id", cfg.Admin.DeleteAccount)
	admin.Get("/technicians", cfg.Admin.ListTechnicians)
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Post("/tickets/:id/assign", cfg.Admin.AssignTicket)
	admin.Get("/activity", cfg.Admin.ListActivity)
}
