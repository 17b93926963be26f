package transactions

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sebastianiv21/expense-tracker/internal/money"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a positive value with at most two decimal places")
	}
	if req.Type != "income" && req.Type != "expense" {
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	t := &Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        date,
	}
	id, err := h.Repo.Insert(userContext(c), t)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to add transaction: "+err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "message": "transaction added"})
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	items, err := h.Repo.ListByUser(userContext(c), userID, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list transactions: "+err.Error())
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
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete transaction: "+err.Error())
	}
	return c.JSON(fiber.Map{"message": "transaction deleted"})
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
