package middleware

import (
	"runtime/debug"
	"strings"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// ConnectionLimiter limits the number of concurrent connections
type ConnectionLimiter struct {
	limit    int
	waitlist chan struct{}
}

func NewConnectionLimiter(limit int) *ConnectionLimiter {
	return &ConnectionLimiter{
		limit:    limit,
		waitlist: make(chan struct{}, limit),
	}
}

func (cl *ConnectionLimiter) Acquire() bool {
	select {
	case cl.waitlist <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cl *ConnectionLimiter) Release() {
	select {
	case <-cl.waitlist:
	default:
	}
}

// Register wires the standard middleware chain: request IDs, panic recovery,
// CORS from config, and an optional concurrency cap.
func Register(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(panicRecoveryMiddleware())

	corsCfg := cors.Config{}
	if len(config.Cfg.Cors.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = config.Cfg.Cors.AllowOrigins
	}
	if len(config.Cfg.Cors.AllowMethods) > 0 {
		corsCfg.AllowMethods = config.Cfg.Cors.AllowMethods
	}
	if len(config.Cfg.Cors.AllowHeaders) > 0 {
		corsCfg.AllowHeaders = config.Cfg.Cors.AllowHeaders
	}
	app.Use(cors.New(corsCfg))

	if config.Cfg.Server.Concurrency > 0 {
		app.Use(connectionLimiterMiddleware(NewConnectionLimiter(config.Cfg.Server.Concurrency)))
	}
}

// connectionLimiterMiddleware creates a middleware for connection limiting
func connectionLimiterMiddleware(limiter *ConnectionLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !limiter.Acquire() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Server is at maximum capacity")
		}
		defer limiter.Release()
		return c.Next()
	}
}

// panicRecoveryMiddleware creates a middleware for panic recovery
func panicRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.WithFields(map[string]interface{}{
					"panic":      r,
					"method":     c.Method(),
					"path":       c.Path(),
					"ip":         c.IP(),
					"user_agent": c.Get("User-Agent"),
					"stack":      strings.TrimSpace(string(stack)),
				}).Errorf("Panic recovered")

				err := c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Internal Server Error",
					"message": "An unexpected error occurred",
				})
				if err != nil {
					logger.WithField("error", err).Errorf("Failed to send error response")
				}
			}
		}()
		return c.Next()
	}
}
