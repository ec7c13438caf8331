package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GDSC-UTSC/gdg-website/internal/config"
	"github.com/GDSC-UTSC/gdg-website/internal/handler"
	"github.com/GDSC-UTSC/gdg-website/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ReviewHandler   *handler.ReviewHandler
	JWTMiddleware   fiber.Handler
	AdminMiddleware fiber.Handler
	RateLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck())
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck())

	if deps.ReviewHandler == nil {
		return
	}

	guarded := []fiber.Handler{deps.JWTMiddleware, deps.AdminMiddleware}
	limited := []fiber.Handler{deps.JWTMiddleware, deps.AdminMiddleware, deps.RateLimiter}

	review := deps.ReviewHandler
	api.Post("/review-applications", chain(limited, review.ReviewApplications)...)
	api.Post("/positions/:positionId/applications/:applicationId/review", chain(limited, review.ReviewApplication)...)
	api.Get("/positions/:positionId/reviews", chain(guarded, review.ListReviews)...)

	// Unversioned alias kept for existing dashboard clients.
	app.Post("/review-applications", chain(limited, review.ReviewApplications)...)
}

// chain returns a fresh handler list of the non-nil middlewares followed by final.
func chain(middlewares []fiber.Handler, final fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		if middleware != nil {
			handlers = append(handlers, middleware)
		}
	}
	return append(handlers, final)
}
