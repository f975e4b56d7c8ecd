package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/api/http/handlers"
	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := protected.Group("/users")
	users.Get("/", auth.RequireCapability(domain.CapAdmin), cfg.Users.ListCreated)
	users.Get("/me", cfg.Users.Me)
	users.Get("/me/sessions", cfg.Users.Sessions)
	users.Get("/me/current-ip", cfg.Users.CurrentIP)
	users.Post("/password/change", cfg.Users.ChangePassword)
	users.Post("/:id/confirm", auth.RequireCapability(domain.CapAdmin), cfg.Users.Confirm)
	users.Post("/:id/deactivate", auth.RequireCapability(domain.CapAdmin), cfg.Users.Deactivate)
	users.Post("/:id/roles", auth.RequireCapability(domain.CapAdmin), cfg.Users.AssignRole)
	users.Delete("/:id/roles/:role", auth.RequireCapability(domain.CapAdmin), cfg.Users.RevokeRole)

	tickets := protected.Group("/tickets")
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/overdue", auth.RequireCapability(domain.CapSupport), cfg.Tickets.ListOverdue)
	tickets.Get("/stages", cfg.Tickets.ListStages)
	tickets.Post("/stages", auth.RequireCapability(domain.CapAdmin), cfg.Tickets.CreateStage)
	tickets.Post("/", auth.RequireCapability(domain.CapSupport), cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", auth.RequireCapability(domain.CapEdit), cfg.Tickets.Update)
	tickets.Post("/:id/stage", auth.RequireCapability(domain.CapSupport), cfg.Tickets.AdvanceStage)
	tickets.Post("/:id/close", auth.RequireCapability(domain.CapSupport), cfg.Tickets.Close)
	tickets.Post("/:id/reopen", auth.RequireCapability(domain.CapSupport), cfg.Tickets.Reopen)

	messages := protected.Group("/messages")
	messages.Post("/", cfg.Messages.Send)
	messages.Get("/unread", cfg.Messages.UnreadCount)
	messages.Get("/with/:userId", cfg.Messages.ListConversation)
	messages.Get("/:id", cfg.Messages.Get)
	messages.Post("/:id/read", cfg.Messages.MarkRead)
	messages.Get("/:id/replies", cfg.Messages.ListReplies)

	teams := protected.Group("/teams")
	teams.Get("/mine", cfg.Messages.ListTeams)
	teams.Post("/", auth.RequireCapability(domain.CapAdmin), cfg.Directory.CreateTeam)
	teams.Get("/:id/messages", cfg.Messages.ListTeamMessages)
	teams.Post("/:id/members", auth.RequireCapability(domain.CapAdmin), cfg.Directory.AddTeamMember)
	teams.Delete("/:id/members/:userId", auth.RequireCapability(domain.CapAdmin), cfg.Directory.RemoveTeamMember)

	costumers := protected.Group("/costumers")
	costumers.Post("/", auth.RequireCapability(domain.CapSupport), cfg.Directory.CreateCostumer)
	costumers.Get("/:id", cfg.Directory.GetCostumer)

	catalog := protected.Group("/catalog")
	catalog.Get("/ticket-types", cfg.Directory.ListTicketTypes)
	catalog.Post("/ticket-types", auth.RequireCapability(domain.CapEdit), cfg.Directory.EnsureTicketType)
	catalog.Post("/services", auth.RequireCapability(domain.CapEdit), cfg.Directory.EnsureService)
}
