package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/handlers"
	"github.com/hormatech/blockplant/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	orderHandler *handlers.OrderHandler,
	materialHandler *handlers.MaterialHandler,
	equipmentHandler *handlers.EquipmentHandler,
	healthHandler *handlers.HealthHandler,
	sessions *auth.SessionManager,
) {
	router.Get("/health", healthHandler.Check)

	// Public auth endpoints. Throttling here is persistent and lives in the
	// service layer, keyed by account and client IP.
	router.Post("/auth/login", authHandler.Login)
	router.Post("/auth/signup", authHandler.Signup)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessions))
		r.Use(middleware.RateLimitByIP(middleware.DefaultAPIRateLimit()))

		r.Post("/auth/logout", authHandler.Logout)

		// Production orders: any authenticated role can read and record
		// progress; creation and deletion need a supervisor or admin.
		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{id}", orderHandler.Get)
		r.Patch("/orders/{id}/progress", orderHandler.Progress)
		r.With(auth.RequireRole("supervisor", "admin")).Post("/orders", orderHandler.Create)
		r.With(auth.RequireRole("supervisor", "admin")).Delete("/orders/{id}", orderHandler.Delete)

		// Raw-material inventory
		r.Get("/materials", materialHandler.List)
		r.Get("/materials/{id}", materialHandler.Get)
		r.Patch("/materials/{id}/stock", materialHandler.AdjustStock)
		r.With(auth.RequireRole("supervisor", "admin")).Post("/materials", materialHandler.Create)
		r.With(auth.RequireRole("supervisor", "admin")).Put("/materials/{id}", materialHandler.Update)
		r.With(auth.RequireRole("supervisor", "admin")).Delete("/materials/{id}", materialHandler.Delete)

		// Plant-floor equipment
		r.Get("/equipment", equipmentHandler.List)
		r.Get("/equipment/{id}", equipmentHandler.Get)
		r.Post("/equipment/{id}/maintenance", equipmentHandler.RecordMaintenance)
		r.With(auth.RequireRole("supervisor", "admin")).Post("/equipment", equipmentHandler.Create)
		r.With(auth.RequireRole("supervisor", "admin")).Patch("/equipment/{id}/status", equipmentHandler.SetStatus)
		r.With(auth.RequireRole("supervisor", "admin")).Delete("/equipment/{id}", equipmentHandler.Delete)

		// Team management is admin-only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole("admin"))
			r.Get("/users", userHandler.List)
			r.Get("/users/{id}", userHandler.Get)
			r.Post("/users", userHandler.Create)
			r.Put("/users/{id}", userHandler.Update)
			r.Delete("/users/{id}", userHandler.Delete)
		})
	})
}
