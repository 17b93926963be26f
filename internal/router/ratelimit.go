package router

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Rate limits are env-tunable so a deployment can loosen them without a
// rebuild: AUTH_RATE_LIMIT and WRITE_RATE_LIMIT set the request budget,
// RATE_LIMIT_WINDOW_SECONDS the window they share.
const (
	defaultAuthLimit     = 10
	defaultWriteLimit    = 60
	defaultWindowSeconds = 60
)

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func limitWindow() time.Duration {
	return time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", defaultWindowSeconds)) * time.Second
}

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too_many_requests"})
}

// RateLimitAuth throttles signup/login by client IP, since those requests
// arrive without a user identity.
func RateLimitAuth() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        envInt("AUTH_RATE_LIMIT", defaultAuthLimit),
		Expiration: limitWindow(),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: limitReached,
	})
}

// RateLimitWrite throttles mutating endpoints per authenticated user, so a
// busy catch-up sweep from one account cannot starve another behind the
// same NAT. Requests without a user fall back to the IP key.
func RateLimitWrite() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        envInt("WRITE_RATE_LIMIT", defaultWriteLimit),
		Expiration: limitWindow(),
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
				return uid
			}
			return c.IP()
		},
		LimitReached: limitReached,
	})
}
