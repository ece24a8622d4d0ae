package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"colegio_backend/internals/configs"
	"colegio_backend/internals/helpers/dbtime"
	"colegio_backend/internals/middlewares/logger"
	"colegio_backend/internals/middlewares/metrics"
)

// SetupMiddlewares installs the global chain, in order.
func SetupMiddlewares(app *fiber.App, cfg configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(RequestContext(cfg.Timezone, 5*time.Second))
	app.Use(logger.LoggerMiddleware(cfg.Timezone.String()))
	app.Use(metrics.Middleware())
	app.Use(CorsMiddleware(cfg.FrontendURL))
	app.Use(GlobalRateLimiter())
}

// RequestContext: request id, school timezone and a timeout aligned with statement_timeout.
func RequestContext(loc *time.Location, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		if loc != nil {
			c.Locals(dbtime.LocTimezone, loc)
		}

		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
