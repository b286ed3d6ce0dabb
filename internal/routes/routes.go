package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	actions *services.Actions,
	healthHandler *handlers.HealthHandler,
	shopHandler *handlers.ShopHandler,
	productHandler *handlers.ProductHandler,
	salesHandler *handlers.SalesHandler,
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

	// Protected routes (JWT required) - apply middleware to individual routes
	// so it never runs for public ones. The owner email comes from the claims.
	jwt := middleware.JWTProtected(cfg)

	// Shop lookups are public. A token, when sent, supplies the default email.
	api.Get("/shops", middleware.JWTOptional(cfg), shopHandler.GetByEmail)
	api.Get("/shops/:name", shopHandler.GetByName)

	// Shop registration: 10 req/min per IP (stricter)
	api.Post("/shops", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), jwt, shopHandler.Create)

	// Owner routes act on the caller's own shop
	shopRequired := middleware.ShopRequired(actions)
	api.Put("/shops", jwt, shopRequired, shopHandler.Update)
	api.Post("/products", jwt, shopRequired, productHandler.Create)
	api.Put("/products/:id", jwt, shopRequired, productHandler.Update)
	api.Post("/sales", jwt, shopRequired, salesHandler.SalesMap)
}
