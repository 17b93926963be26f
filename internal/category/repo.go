package category

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("category not found")

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Insert(ctx context.Context, cat *Category) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, type)
		VALUES ($1::uuid, $2, $3)
		RETURNING id::text`,
		cat.UserID, cat.Name, cat.Type,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Category, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id::text, user_id::text, name, type, created_at
		FROM categories
		WHERE user_id = $1::uuid
		ORDER BY type, name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteByID removes a category. Transactions and recurring transactions
// that referenced it keep existing with category_id set to null (FK is
// ON DELETE SET NULL); a recurrence never dies with its category.
func (r *Repository) DeleteByID(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	ct, err := r.Pool.Exec(ctx, `
		DELETE FROM categories WHERE id = $1::uuid AND user_id = $2::uuid`,
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
