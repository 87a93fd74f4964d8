package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reshla/blacklist-service/internal/api/http/handlers"
	"github.com/reshla/blacklist-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Reports        *handlers.ReportsHandler
	Moderation     *handlers.ModerationHandler
	Roles          *handlers.RolesHandler
	Blacklist      *handlers.BlacklistHandler
	AuthMiddleware *auth.AuthMiddleware
	RoleChecker    auth.RoleChecker
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	// Published blacklist is public.
	app.Get("/blacklist", cfg.Blacklist.List)
	app.Get("/blacklist/:subject_id", cfg.Blacklist.Get)

	reports := app.Group("/reports")
	reports.Get("/", cfg.AuthMiddleware.Optional, cfg.Reports.ListReports)
	reports.Get("/mine", cfg.AuthMiddleware.Handle, cfg.Reports.ListOwnReports)
	reports.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Reports.GetReport)
	reports.Post("/", cfg.AuthMiddleware.Handle, cfg.Reports.CreateReport)
	reports.Post("/:id/vote", cfg.AuthMiddleware.Handle, cfg.Reports.Vote)
	reports.Post("/:id/comments", cfg.AuthMiddleware.Handle, cfg.Reports.AddComment)
	reports.Post("/:id/resubmit", cfg.AuthMiddleware.Handle, cfg.Reports.ResubmitReport)

	moderation := app.Group("/moderation", cfg.AuthMiddleware.Handle, auth.RequireModerator(cfg.RoleChecker))
	moderation.Get("/queue", cfg.Moderation.Queue)
	moderation.Post("/reports/:id/approve", cfg.Moderation.Approve)
	moderation.Post("/reports/:id/reject", cfg.Moderation.Reject)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin(cfg.RoleChecker))
	admin.Get("/roles", cfg.Roles.Get)
	admin.Put("/roles", cfg.Roles.Update)
}
