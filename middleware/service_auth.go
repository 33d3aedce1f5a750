package middleware

import (
	"crypto/subtle"
	"strings"

	"il2-stats/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// ServiceAuthMiddleware accepts only callers presenting the shared service
// token as "Authorization: Bearer <token>".
func ServiceAuthMiddleware(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.L().Warn("[SERVICE_AUTH] missing Authorization header", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service token missing",
			})
		}

		got := strings.TrimPrefix(authHeader, "Bearer ")
		if !tokenMatches(got, token) {
			logger.L().Warn("[SERVICE_AUTH] invalid token", zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}

// StreamAuthMiddleware is ServiceAuthMiddleware for EventSource clients,
// which cannot set headers: the token may also come as ?token=.
func StreamAuthMiddleware(token string) fiber.Handler {
	header := ServiceAuthMiddleware(token)
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") != "" {
			return header(c)
		}
		got := strings.TrimSpace(c.Query("token"))
		if got == "" || !tokenMatches(got, token) {
			logger.L().Warn("[STREAM_AUTH] rejected stream request", zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}
