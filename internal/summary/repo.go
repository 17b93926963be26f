package summary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	DB *pgxpool.Pool
}

type Summary struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Net          string `json:"net"`
}

func (r Repo) GetByUser(ctx context.Context, userID string, month string) (Summary, error) {
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::text,
		       COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::text
		FROM transactions
		WHERE user_id = $1::uuid`
	args := []any{userID}

	// Optional YYYY-MM filter.
	if month != "" {
		query += ` AND to_char(date, 'YYYY-MM') = $2`
		args = append(args, month)
	}

	var incomeStr, expenseStr string
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&incomeStr, &expenseStr); err != nil {
		return Summary{}, err
	}

	income, err := decimal.NewFromString(incomeStr)
	if err != nil {
		return Summary{}, fmt.Errorf("parse income total %q: %w", incomeStr, err)
	}
	expense, err := decimal.NewFromString(expenseStr)
	if err != nil {
		return Summary{}, fmt.Errorf("parse expense total %q: %w", expenseStr, err)
	}

	return Summary{
		TotalIncome:  income.StringFixed(2),
		TotalExpense: expense.StringFixed(2),
		Net:          income.Sub(expense).StringFixed(2),
	}, nil
}
