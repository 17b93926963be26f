package router

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// corsOrigins reads CORS_ORIGIN, a comma-separated allowlist. Empty means
// any origin, which only makes sense for local development.
func corsOrigins() string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGIN"))
	if raw == "" {
		return "*"
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

// CorsMiddleware allows the frontend origin(s) to call the API with the
// Authorization header. Credentials stay off: auth rides in the bearer
// token, not in cookies.
func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: false,
	})
}
