package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sebastianiv21/expense-tracker/internal/money"
)

// GeneratedPrefix tags ledger descriptions so generated rows are
// distinguishable from hand-entered ones.
const GeneratedPrefix = "[Recurring] "

const maxDescriptionLen = 255

// Ledger appends generated transactions. Appends must be idempotent per
// (recurring id, occurrence date) so a lost cursor race cannot duplicate an
// occurrence.
type Ledger interface {
	Append(ctx context.Context, e Entry) error
}

// Store persists recurrence records. UpdateCursor is conditional on the
// previously read cursor value; implementations return ErrCursorConflict
// when the stored cursor has moved.
type Store interface {
	FindDueForUser(ctx context.Context, userID string, asOf time.Time) ([]RecurringTransaction, error)
	FindAllForUser(ctx context.Context, userID string) ([]RecurringTransaction, error)
	FindByID(ctx context.Context, userID, id string) (*RecurringTransaction, error)
	Insert(ctx context.Context, rec *RecurringTransaction) error
	Update(ctx context.Context, rec *RecurringTransaction) error
	UpdateCursor(ctx context.Context, id string, prevDue, nextDue, lastGenerated time.Time) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// Engine owns the due-date arithmetic and the catch-up generation loop.
// Operations on different records are independent; per record, the CAS in
// UpdateCursor plus the ledger's occurrence dedupe keep concurrent calls
// from double-generating.
type Engine struct {
	Ledger Ledger
	Store  Store
}

func NewEngine(ledger Ledger, store Store) *Engine {
	return &Engine{Ledger: ledger, Store: store}
}

// CatchUp materializes every occurrence of rec due at or before asOf,
// stopping early at the record's end date. The cursor is persisted once,
// after all appends succeed, so a failed append never advances the schedule
// past the last occurrence actually written.
func (e *Engine) CatchUp(ctx context.Context, rec *RecurringTransaction, asOf time.Time) (int, error) {
	prev := rec.NextDueDate
	cursor := prev
	generated := 0

	for !cursor.After(asOf) {
		if rec.EndDate != nil && cursor.After(*rec.EndDate) {
			break
		}

		desc := GeneratedPrefix
		if rec.Description != nil {
			desc += *rec.Description
		}
		err := e.Ledger.Append(ctx, Entry{
			UserID:      rec.UserID,
			CategoryID:  rec.CategoryID,
			RecurringID: rec.ID,
			Amount:      rec.Amount,
			Type:        rec.Type,
			Description: desc,
			Date:        cursor,
		})
		if err != nil {
			return generated, fmt.Errorf("append occurrence %s: %w", cursor.Format("2006-01-02"), err)
		}

		generated++
		cursor = NextDueDate(cursor, rec.Frequency)
	}

	if generated > 0 {
		if err := e.Store.UpdateCursor(ctx, rec.ID, prev, cursor, asOf); err != nil {
			return generated, err
		}
		rec.NextDueDate = cursor
		last := asOf
		rec.LastGeneratedDate = &last
	}
	return generated, nil
}

// Sweep runs read-triggered reconciliation for one user: every active
// record whose cursor is due gets caught up, and records already past their
// end date get deactivated instead. There is no background scheduler; the
// recurring list endpoint calls this before reading.
func (e *Engine) Sweep(ctx context.Context, userID string, asOf time.Time) ([]SweepResult, error) {
	due, err := e.Store.FindDueForUser(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(due))
	for i := range due {
		rec := &due[i]

		if rec.EndDate != nil && rec.EndDate.Before(asOf) {
			if err := e.Store.Deactivate(ctx, rec.ID); err != nil {
				return results, err
			}
			results = append(results, SweepResult{ID: rec.ID, Deactivated: true})
			continue
		}

		n, err := e.CatchUp(ctx, rec, asOf)
		if errors.Is(err, ErrCursorConflict) {
			// A concurrent request won the cursor; its appends cover this
			// record, so the sweep just moves on.
			results = append(results, SweepResult{ID: rec.ID})
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, SweepResult{ID: rec.ID, Generated: n})
	}
	return results, nil
}

// Generate is the user-triggered "generate now" action for a single record.
func (e *Engine) Generate(ctx context.Context, userID, id string, asOf time.Time) (int, error) {
	rec, err := e.Store.FindByID(ctx, userID, id)
	if err != nil {
		return 0, err
	}
	if !rec.IsActive {
		return 0, ErrInactive
	}
	return e.CatchUp(ctx, rec, asOf)
}

// Create validates the definition and stores it with the cursor at the
// start date. With GenerateFirst the first occurrence is materialized
// immediately, even when the start date lies in the future; that bypass is
// deliberate since the user asked for it explicitly.
func (e *Engine) Create(ctx context.Context, userID string, req CreateRequest) (*RecurringTransaction, error) {
	var msgs []string

	amount, err := money.Parse(req.Amount)
	if err != nil {
		msgs = append(msgs, "amount must be a positive value with at most two decimal places")
	}
	if req.Type != "income" && req.Type != "expense" {
		msgs = append(msgs, "type must be income or expense")
	}
	freq := Frequency(req.Frequency)
	if !freq.Valid() {
		msgs = append(msgs, "frequency must be one of daily, weekly, biweekly, monthly, quarterly, yearly")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		msgs = append(msgs, "start_date must be YYYY-MM-DD")
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			msgs = append(msgs, "end_date must be YYYY-MM-DD")
		} else if !start.IsZero() && d.Before(start) {
			msgs = append(msgs, "end_date must not be before start_date")
		} else {
			end = &d
		}
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		msgs = append(msgs, "description must be at most 255 characters")
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := uuid.Parse(*req.CategoryID); err != nil {
			msgs = append(msgs, "category_id must be a valid id")
		}
	}
	if len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	var categoryID *string
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID = req.CategoryID
	}

	rec := &RecurringTransaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Type:        req.Type,
		Description: req.Description,
		Frequency:   freq,
		StartDate:   start,
		EndDate:     end,
		NextDueDate: start,
		IsActive:    active,
	}
	if err := e.Store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	if req.GenerateFirst {
		if _, err := e.generateFirst(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// generateFirst is a one-shot catch-up bounded to a single occurrence at
// the start date, without the "due" check.
func (e *Engine) generateFirst(ctx context.Context, rec *RecurringTransaction) (int, error) {
	desc := GeneratedPrefix
	if rec.Description != nil {
		desc += *rec.Description
	}
	err := e.Ledger.Append(ctx, Entry{
		UserID:      rec.UserID,
		CategoryID:  rec.CategoryID,
		RecurringID: rec.ID,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Description: desc,
		Date:        rec.StartDate,
	})
	if err != nil {
		return 0, fmt.Errorf("append first occurrence: %w", err)
	}

	next := NextDueDate(rec.StartDate, rec.Frequency)
	if err := e.Store.UpdateCursor(ctx, rec.ID, rec.StartDate, next, rec.StartDate); err != nil {
		return 1, err
	}
	rec.NextDueDate = next
	last := rec.StartDate
	rec.LastGeneratedDate = &last
	return 1, nil
}

// Update applies a partial patch. Changing the frequency recomputes the
// cursor from the last generated date (or the start date when nothing has
// been generated); every other field is a plain overwrite that leaves the
// cursor alone.
func (e *Engine) Update(ctx context.Context, userID, id string, req UpdateRequest) (*RecurringTransaction, error) {
	rec, err := e.Store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var msgs []string

	if req.Amount != nil {
		amount, err := money.Parse(*req.Amount)
		if err != nil {
			msgs = append(msgs, "amount must be a positive value with at most two decimal places")
		} else {
			rec.Amount = amount
		}
	}
	if req.Type != nil {
		if *req.Type != "income" && *req.Type != "expense" {
			msgs = append(msgs, "type must be income or expense")
		} else {
			rec.Type = *req.Type
		}
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLen {
			msgs = append(msgs, "description must be at most 255 characters")
		} else {
			rec.Description = req.Description
		}
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			rec.CategoryID = nil
		} else if _, err := uuid.Parse(*req.CategoryID); err != nil {
			msgs = append(msgs, "category_id must be a valid id")
		} else {
			rec.CategoryID = req.CategoryID
		}
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			msgs = append(msgs, "start_date must be YYYY-MM-DD")
		} else {
			rec.StartDate = d
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			rec.EndDate = nil
		} else {
			d, err := parseDate(*req.EndDate)
			if err != nil {
				msgs = append(msgs, "end_date must be YYYY-MM-DD")
			} else {
				rec.EndDate = &d
			}
		}
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	if req.Frequency != nil {
		freq := Frequency(*req.Frequency)
		if !freq.Valid() {
			msgs = append(msgs, "frequency must be one of daily, weekly, biweekly, monthly, quarterly, yearly")
		} else if freq != rec.Frequency {
			rec.Frequency = freq
			anchor := rec.StartDate
			if rec.LastGeneratedDate != nil {
				anchor = dateOnly(*rec.LastGeneratedDate)
			}
			rec.NextDueDate = NextDueDate(anchor, freq)
		}
	}

	if len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	if err := e.Store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the schedule; transactions it already generated stay in
// the ledger.
func (e *Engine) Delete(ctx context.Context, userID, id string) error {
	return e.Store.Delete(ctx, userID, id)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
