package summary

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Repo Repo
}

func (h Handler) GetSummary(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	month := strings.TrimSpace(c.Query("month")) // YYYY-MM or empty

	s, err := h.Repo.GetByUser(userContext(c), userID, month)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch summary: "+err.Error())
	}
	return c.JSON(s)
}

func getUserID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
