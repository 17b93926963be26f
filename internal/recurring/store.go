package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sebastianiv21/expense-tracker/internal/money"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

const recurringColumns = `id::text, user_id::text, category_id::text, amount::text, type,
       description, frequency, start_date, end_date, next_due_date,
       last_generated_date, is_active, created_at, updated_at`

func (s *PostgresStore) FindDueForUser(ctx context.Context, userID string, asOf time.Time) ([]RecurringTransaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+recurringColumns+`
		FROM recurring_transactions
		WHERE user_id = $1::uuid AND is_active AND next_due_date <= $2::date`,
		userID, asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecurring(rows)
}

func (s *PostgresStore) FindAllForUser(ctx context.Context, userID string) ([]RecurringTransaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+recurringColumns+`
		FROM recurring_transactions
		WHERE user_id = $1::uuid
		ORDER BY is_active DESC, next_due_date DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecurring(rows)
}

func (s *PostgresStore) FindByID(ctx context.Context, userID, id string) (*RecurringTransaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := s.Pool.QueryRow(ctx, `
		SELECT `+recurringColumns+`
		FROM recurring_transactions
		WHERE id = $1::uuid AND user_id = $2::uuid`,
		id, userID,
	)
	rec, err := scanOne(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec *RecurringTransaction) error {
	return s.Pool.QueryRow(ctx, `
		INSERT INTO recurring_transactions
			(user_id, category_id, amount, type, description, frequency,
			 start_date, end_date, next_due_date, is_active)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text, created_at, updated_at`,
		rec.UserID, rec.CategoryID, rec.Amount.StringFixed(2), rec.Type,
		rec.Description, rec.Frequency, rec.StartDate, rec.EndDate,
		rec.NextDueDate, rec.IsActive,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (s *PostgresStore) Update(ctx context.Context, rec *RecurringTransaction) error {
	ct, err := s.Pool.Exec(ctx, `
		UPDATE recurring_transactions
		SET category_id = $3::uuid,
		    amount = $4,
		    type = $5,
		    description = $6,
		    frequency = $7,
		    start_date = $8,
		    end_date = $9,
		    next_due_date = $10,
		    is_active = $11,
		    updated_at = now()
		WHERE id = $1::uuid AND user_id = $2::uuid`,
		rec.ID, rec.UserID, rec.CategoryID, rec.Amount.StringFixed(2),
		rec.Type, rec.Description, rec.Frequency, rec.StartDate, rec.EndDate,
		rec.NextDueDate, rec.IsActive,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCursor advances the schedule only when the stored cursor still
// equals the one the caller read. A lost race surfaces as ErrCursorConflict
// instead of a silent double-advance.
func (s *PostgresStore) UpdateCursor(ctx context.Context, id string, prevDue, nextDue, lastGenerated time.Time) error {
	ct, err := s.Pool.Exec(ctx, `
		UPDATE recurring_transactions
		SET next_due_date = $3::date, last_generated_date = $4, updated_at = now()
		WHERE id = $1::uuid AND next_due_date = $2::date`,
		id, prevDue, nextDue, lastGenerated,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrCursorConflict
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE recurring_transactions
		SET is_active = false, updated_at = now()
		WHERE id = $1::uuid`,
		id,
	)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	ct, err := s.Pool.Exec(ctx, `
		DELETE FROM recurring_transactions
		WHERE id = $1::uuid AND user_id = $2::uuid`,
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

func scanRecurring(rows pgx.Rows) ([]RecurringTransaction, error) {
	out := make([]RecurringTransaction, 0)
	for rows.Next() {
		rec, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanOne(row pgx.Row) (*RecurringTransaction, error) {
	var (
		rec    RecurringTransaction
		amount string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CategoryID, &amount, &rec.Type,
		&rec.Description, &rec.Frequency, &rec.StartDate, &rec.EndDate,
		&rec.NextDueDate, &rec.LastGeneratedDate, &rec.IsActive,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Amount, err = money.ParseString(amount)
	if err != nil {
		return nil, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	return &rec, nil
}
