package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sebastianiv21/expense-tracker/internal/money"
	"github.com/sebastianiv21/expense-tracker/internal/recurring"
)

var ErrNotFound = errors.New("transaction not found")

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// Append is the recurrence engine's ledger write. ON CONFLICT DO NOTHING
// against the (recurring_id, date) partial unique index makes it idempotent
// per occurrence, so a retried or racing catch-up cannot double-insert.
func (r *Repo) Append(ctx context.Context, e recurring.Entry) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO transactions (user_id, category_id, recurring_id, amount, type, description, date)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (recurring_id, date) WHERE recurring_id IS NOT NULL DO NOTHING`,
		e.UserID, e.CategoryID, e.RecurringID, e.Amount.StringFixed(2),
		e.Type, e.Description, e.Date,
	)
	return err
}

func (r *Repo) Insert(ctx context.Context, t *Transaction) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, category_id, amount, type, description, date)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
		RETURNING id::text`,
		t.UserID, t.CategoryID, t.Amount.StringFixed(2), t.Type, t.Description, t.Date,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT id::text, user_id::text, category_id::text, recurring_id::text,
		       amount::text, type, description, date, created_at
		FROM transactions
		WHERE user_id = $1::uuid
		ORDER BY date DESC, created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, limit)
	for rows.Next() {
		var (
			t      Transaction
			amount string
		)
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.CategoryID, &t.RecurringID,
			&amount, &t.Type, &t.Description, &t.Date, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.Amount, err = money.ParseString(amount)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteByID(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	ct, err := r.Pool.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1::uuid AND user_id = $2::uuid`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
