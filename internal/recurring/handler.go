package recurring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sebastianiv21/expense-tracker/internal/audit"
)

type Handler struct {
	Engine *Engine
	Audit  *audit.Recorder
}

func NewHandler(engine *Engine, rec *audit.Recorder) *Handler {
	return &Handler{Engine: engine, Audit: rec}
}

// List sweeps due records first (read-triggered reconciliation), then
// returns every recurrence the user owns.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	ctx := userContext(c)

	swept, err := h.Engine.Sweep(ctx, userID, time.Now().UTC())
	if err != nil {
		return httpError(err)
	}

	items, err := h.Engine.Store.FindAllForUser(ctx, userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list recurring transactions: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": items, "swept": swept})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := userContext(c)
	rec, err := h.Engine.Create(ctx, userID, req)
	if err != nil {
		return httpError(err)
	}

	h.Audit.Record(ctx, userID, "recurring.create", rec.ID)
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := userContext(c)
	rec, err := h.Engine.Update(ctx, userID, c.Params("id"), req)
	if err != nil {
		return httpError(err)
	}

	h.Audit.Record(ctx, userID, "recurring.update", rec.ID)
	return c.JSON(rec)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ctx := userContext(c)
	id := c.Params("id")
	if err := h.Engine.Delete(ctx, userID, id); err != nil {
		return httpError(err)
	}

	h.Audit.Record(ctx, userID, "recurring.delete", id)
	return c.JSON(fiber.Map{"message": "recurring transaction deleted"})
}

// Generate handles the explicit "generate now" action.
func (h *Handler) Generate(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ctx := userContext(c)
	id := c.Params("id")
	n, err := h.Engine.Generate(ctx, userID, id, time.Now().UTC())
	if err != nil {
		return httpError(err)
	}

	h.Audit.Record(ctx, userID, "recurring.generate", id)
	return c.JSON(fiber.Map{"message": "generated", "generated": n})
}

func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "recurring transaction not found")
	case errors.Is(err, ErrInactive):
		return fiber.NewError(fiber.StatusBadRequest, "cannot generate for inactive recurring transaction")
	case errors.Is(err, ErrCursorConflict):
		return fiber.NewError(fiber.StatusConflict, "recurring transaction changed concurrently, retry")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
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
