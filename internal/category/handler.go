package category

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}
	if len(req.Name) > 64 {
		return fiber.NewError(fiber.StatusBadRequest, "name must be at most 64 characters")
	}
	if req.Type != "income" && req.Type != "expense" {
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}

	cat := &Category{UserID: userID, Name: req.Name, Type: req.Type}
	id, err := h.Repo.Insert(userContext(c), cat)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to add category: "+err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "message": "category added"})
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Repo.ListByUser(userContext(c), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list categories: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Repo.DeleteByID(userContext(c), userID, c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete category: "+err.Error())
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
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
