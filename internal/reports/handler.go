package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sebastianiv21/expense-tracker/internal/money"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type statementRow struct {
	Type        string
	Description string
	Amount      decimal.Decimal
	Recurring   bool
	Date        string
}

// statementRange resolves the from/to query params, defaulting to the last
// 30 days.
func statementRange(c *fiber.Ctx) (string, string, error) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		end := time.Now()
		start := end.AddDate(0, 0, -29)
		from = start.Format("2006-01-02")
		to = end.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}

func (h *Handler) loadRows(ctx context.Context, userID, from, to string) ([]statementRow, decimal.Decimal, decimal.Decimal, error) {
	rows, err := h.Pool.Query(ctx, `
		SELECT type, COALESCE(description, ''), amount::text, recurring_id IS NOT NULL, date::text
		FROM transactions
		WHERE user_id = $1::uuid AND date BETWEEN $2::date AND $3::date
		ORDER BY date DESC, created_at DESC
		LIMIT 2000`,
		userID, from, to,
	)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	defer rows.Close()

	var (
		items        []statementRow
		totalIncome  = decimal.Zero
		totalExpense = decimal.Zero
	)
	for rows.Next() {
		var (
			r      statementRow
			amount string
		)
		if err := rows.Scan(&r.Type, &r.Description, &amount, &r.Recurring, &r.Date); err != nil {
			return nil, decimal.Zero, decimal.Zero, err
		}
		r.Amount, err = money.ParseString(amount)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		if r.Type == "income" {
			totalIncome = totalIncome.Add(r.Amount)
		} else {
			totalExpense = totalExpense.Add(r.Amount)
		}
		items = append(items, r)
	}
	return items, totalIncome, totalExpense, rows.Err()
}

func reportUserID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func maskID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}
