package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/readstackhq/readstack-backend/internal/config"
	"github.com/readstackhq/readstack-backend/internal/handlers"
	"github.com/readstackhq/readstack-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	materialHandler *handlers.MaterialHandler,
	voteHandler *handlers.VoteHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Catalog and uploads (JWT required)
	materials := api.Group("/materials", middleware.JWTProtected(cfg))
	materials.Get("/", materialHandler.List)
	materials.Get("/keywords", materialHandler.Keywords)
	materials.Get("/mine", materialHandler.ListMine)
	materials.Post("/", materialHandler.Create)
	materials.Get("/:id", materialHandler.Get)
	materials.Delete("/:id", materialHandler.Delete)

	// Vote ledger (JWT required)
	votes := api.Group("/votes", middleware.JWTProtected(cfg))
	votes.Post("/:materialId", voteHandler.Toggle)
	votes.Delete("/:materialId", voteHandler.Remove)
	votes.Get("/:materialId", voteHandler.Count)

	// Approval workflow (JWT + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Patch("/users/:id/approve", adminHandler.ApproveUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Patch("/materials/:id/approve", adminHandler.ApproveMaterial)
	admin.Patch("/materials/:id/subjects", adminHandler.UpdateSubjectTitles)
}
