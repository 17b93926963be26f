package recurring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeLedger struct {
	entries   []Entry
	failAfter int // fail once this many appends have succeeded; -1 never fails
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{failAfter: -1}
}

func (f *fakeLedger) Append(_ context.Context, e Entry) error {
	if f.failAfter >= 0 && len(f.entries) >= f.failAfter {
		return errors.New("ledger store unavailable")
	}
	f.entries = append(f.entries, e)
	return nil
}

type fakeStore struct {
	records       map[string]*RecurringTransaction
	nextID        int
	forceConflict bool
	cursorUpdates int
	deactivated   []string
}

func newFakeStore(recs ...*RecurringTransaction) *fakeStore {
	s := &fakeStore{records: make(map[string]*RecurringTransaction)}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) FindDueForUser(_ context.Context, userID string, asOf time.Time) ([]RecurringTransaction, error) {
	var out []RecurringTransaction
	for _, r := range s.records {
		if r.UserID == userID && r.IsActive && !r.NextDueDate.After(asOf) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) FindAllForUser(_ context.Context, userID string) ([]RecurringTransaction, error) {
	var out []RecurringTransaction
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByID(_ context.Context, userID, id string) (*RecurringTransaction, error) {
	r, ok := s.records[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) Insert(_ context.Context, rec *RecurringTransaction) error {
	s.nextID++
	rec.ID = fmt.Sprintf("rec-%d", s.nextID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *fakeStore) Update(_ context.Context, rec *RecurringTransaction) error {
	if _, ok := s.records[rec.ID]; !ok {
		return ErrNotFound
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateCursor(_ context.Context, id string, prevDue, nextDue, lastGenerated time.Time) error {
	if s.forceConflict {
		return ErrCursorConflict
	}
	r, ok := s.records[id]
	if !ok || !r.NextDueDate.Equal(prevDue) {
		return ErrCursorConflict
	}
	r.NextDueDate = nextDue
	last := lastGenerated
	r.LastGeneratedDate = &last
	s.cursorUpdates++
	return nil
}

func (s *fakeStore) Deactivate(_ context.Context, id string) error {
	r, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	r.IsActive = false
	s.deactivated = append(s.deactivated, id)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, userID, id string) error {
	r, ok := s.records[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func testRecord(freq Frequency, nextDue string) *RecurringTransaction {
	desc := "Netflix"
	return &RecurringTransaction{
		ID:          "rec-1",
		UserID:      "user-1",
		Amount:      decimal.RequireFromString("9.99"),
		Type:        "expense",
		Description: &desc,
		Frequency:   freq,
		StartDate:   date(nextDue),
		NextDueDate: date(nextDue),
		IsActive:    true,
	}
}

func TestCatchUpIdempotent(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	ledger := newFakeLedger()
	store := newFakeStore(rec)
	engine := NewEngine(ledger, store)

	asOf := date("2024-03-01")
	n, err := engine.CatchUp(context.Background(), rec, asOf)
	if err != nil {
		t.Fatalf("first catch-up: %v", err)
	}
	if n != 1 {
		t.Fatalf("first catch-up generated %d, want 1", n)
	}

	n, err = engine.CatchUp(context.Background(), rec, asOf)
	if err != nil {
		t.Fatalf("second catch-up: %v", err)
	}
	if n != 0 {
		t.Errorf("second catch-up generated %d, want 0", n)
	}
	if len(ledger.entries) != 1 {
		t.Errorf("ledger has %d entries, want 1", len(ledger.entries))
	}
}

func TestCatchUpEndDateBoundary(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-01-01")
	end := date("2024-02-15")
	rec.EndDate = &end
	ledger := newFakeLedger()
	store := newFakeStore(rec)
	engine := NewEngine(ledger, store)

	asOf := date("2024-03-01")
	n, err := engine.CatchUp(context.Background(), rec, asOf)
	if err != nil {
		t.Fatalf("catch-up: %v", err)
	}
	if n != 2 {
		t.Fatalf("generated %d, want 2 (Jan 1, Feb 1)", n)
	}
	if got := ledger.entries[0].Date; !got.Equal(date("2024-01-01")) {
		t.Errorf("first occurrence %s, want 2024-01-01", got.Format("2006-01-02"))
	}
	if got := ledger.entries[1].Date; !got.Equal(date("2024-02-01")) {
		t.Errorf("second occurrence %s, want 2024-02-01", got.Format("2006-01-02"))
	}
	if !rec.NextDueDate.Equal(date("2024-03-01")) {
		t.Errorf("cursor ended at %s, want 2024-03-01", rec.NextDueDate.Format("2006-01-02"))
	}

	// The record's end date is now in the past, so the sweep deactivates it
	// rather than catching up again.
	results, err := engine.Sweep(context.Background(), "user-1", asOf)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 1 || !results[0].Deactivated {
		t.Fatalf("sweep results = %+v, want one deactivation", results)
	}
	if store.records["rec-1"].IsActive {
		t.Error("record still active after exhaustion")
	}
	if len(ledger.entries) != 2 {
		t.Errorf("sweep generated extra entries: %d total", len(ledger.entries))
	}
}

func TestCatchUpMultipleOccurrencesInOrder(t *testing.T) {
	rec := testRecord(FrequencyDaily, "2024-03-01")
	ledger := newFakeLedger()
	store := newFakeStore(rec)
	engine := NewEngine(ledger, store)

	n, err := engine.CatchUp(context.Background(), rec, date("2024-03-03"))
	if err != nil {
		t.Fatalf("catch-up: %v", err)
	}
	if n != 3 {
		t.Fatalf("generated %d, want 3", n)
	}
	for i, want := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if got := ledger.entries[i].Date; !got.Equal(date(want)) {
			t.Errorf("entry %d dated %s, want %s", i, got.Format("2006-01-02"), want)
		}
	}
	if !rec.NextDueDate.Equal(date("2024-03-04")) {
		t.Errorf("cursor = %s, want 2024-03-04", rec.NextDueDate.Format("2006-01-02"))
	}
}

func TestCatchUpTagsGeneratedEntries(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	ledger := newFakeLedger()
	engine := NewEngine(ledger, newFakeStore(rec))

	if _, err := engine.CatchUp(context.Background(), rec, date("2024-03-01")); err != nil {
		t.Fatalf("catch-up: %v", err)
	}
	e := ledger.entries[0]
	if e.Description != "[Recurring] Netflix" {
		t.Errorf("description = %q, want %q", e.Description, "[Recurring] Netflix")
	}
	if e.RecurringID != "rec-1" {
		t.Errorf("recurring id = %q, want rec-1", e.RecurringID)
	}
	if !e.Amount.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("amount = %s, want 9.99", e.Amount)
	}
	if e.Type != "expense" {
		t.Errorf("type = %q, want expense", e.Type)
	}
}

func TestCatchUpAppendFailureDoesNotAdvanceCursor(t *testing.T) {
	rec := testRecord(FrequencyDaily, "2024-03-01")
	ledger := newFakeLedger()
	ledger.failAfter = 2
	store := newFakeStore(rec)
	engine := NewEngine(ledger, store)

	n, err := engine.CatchUp(context.Background(), rec, date("2024-03-05"))
	if err == nil {
		t.Fatal("expected error from failing append")
	}
	if n != 2 {
		t.Errorf("generated = %d, want 2 before the failure", n)
	}
	if store.cursorUpdates != 0 {
		t.Error("cursor was persisted despite append failure")
	}
	if !store.records["rec-1"].NextDueDate.Equal(date("2024-03-01")) {
		t.Errorf("stored cursor moved to %s", store.records["rec-1"].NextDueDate.Format("2006-01-02"))
	}
}

func TestCatchUpCursorConflict(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	store := newFakeStore(rec)
	store.forceConflict = true
	engine := NewEngine(newFakeLedger(), store)

	_, err := engine.CatchUp(context.Background(), rec, date("2024-03-01"))
	if !errors.Is(err, ErrCursorConflict) {
		t.Fatalf("err = %v, want ErrCursorConflict", err)
	}
}

func TestSweepContinuesPastCursorConflict(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	store := newFakeStore(rec)
	store.forceConflict = true
	engine := NewEngine(newFakeLedger(), store)

	results, err := engine.Sweep(context.Background(), "user-1", date("2024-03-01"))
	if err != nil {
		t.Fatalf("sweep should swallow cursor conflicts, got %v", err)
	}
	if len(results) != 1 || results[0].Generated != 0 {
		t.Errorf("results = %+v, want one zero-count entry", results)
	}
}

func TestSweepNothingDue(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-06-01")
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	results, err := engine.Sweep(context.Background(), "user-1", date("2024-03-01"))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestGenerateInactiveRecord(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	rec.IsActive = false
	engine := NewEngine(newFakeLedger(), newFakeStore(rec))

	_, err := engine.Generate(context.Background(), "user-1", "rec-1", date("2024-03-01"))
	if !errors.Is(err, ErrInactive) {
		t.Fatalf("err = %v, want ErrInactive", err)
	}
}

func TestGenerateUnknownOrForeignRecord(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-03-01")
	engine := NewEngine(newFakeLedger(), newFakeStore(rec))

	if _, err := engine.Generate(context.Background(), "user-1", "missing", date("2024-03-01")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
	if _, err := engine.Generate(context.Background(), "user-2", "rec-1", date("2024-03-01")); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner: err = %v, want ErrNotFound", err)
	}
}

func TestCreateValidation(t *testing.T) {
	engine := NewEngine(newFakeLedger(), newFakeStore())

	tests := []struct {
		name string
		req  CreateRequest
		want string
	}{
		{
			name: "non-positive amount",
			req:  CreateRequest{Amount: 0, Type: "expense", Frequency: "monthly", StartDate: "2024-01-01"},
			want: "amount",
		},
		{
			name: "three decimal places",
			req:  CreateRequest{Amount: 9.999, Type: "expense", Frequency: "monthly", StartDate: "2024-01-01"},
			want: "amount",
		},
		{
			name: "bad type",
			req:  CreateRequest{Amount: 10, Type: "transfer", Frequency: "monthly", StartDate: "2024-01-01"},
			want: "type",
		},
		{
			name: "unknown frequency rejected instead of defaulting",
			req:  CreateRequest{Amount: 10, Type: "expense", Frequency: "fortnightly", StartDate: "2024-01-01"},
			want: "frequency",
		},
		{
			name: "malformed start date",
			req:  CreateRequest{Amount: 10, Type: "expense", Frequency: "monthly", StartDate: "01/01/2024"},
			want: "start_date",
		},
		{
			name: "end before start",
			req: CreateRequest{Amount: 10, Type: "expense", Frequency: "monthly",
				StartDate: "2024-06-01", EndDate: strptr("2024-01-01")},
			want: "end_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Create(context.Background(), "user-1", tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if !strings.Contains(verr.Error(), tt.want) {
				t.Errorf("message %q does not mention %q", verr.Error(), tt.want)
			}
		})
	}
}

func TestCreateSetsCursorToStartDate(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(newFakeLedger(), store)

	rec, err := engine.Create(context.Background(), "user-1", CreateRequest{
		Amount: 49.50, Type: "income", Frequency: "weekly", StartDate: "2024-05-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !rec.NextDueDate.Equal(date("2024-05-01")) {
		t.Errorf("cursor = %s, want start date", rec.NextDueDate.Format("2006-01-02"))
	}
	if rec.LastGeneratedDate != nil {
		t.Error("last generated date set without generateFirst")
	}
	if !rec.IsActive {
		t.Error("record should default to active")
	}
}

func TestCreateGenerateFirstBypassesDueCheck(t *testing.T) {
	future := dateOnly(time.Now().UTC()).AddDate(0, 0, 10)
	ledger := newFakeLedger()
	store := newFakeStore()
	engine := NewEngine(ledger, store)

	rec, err := engine.Create(context.Background(), "user-1", CreateRequest{
		Amount:        15,
		Type:          "expense",
		Frequency:     "monthly",
		StartDate:     future.Format("2006-01-02"),
		GenerateFirst: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(ledger.entries) != 1 {
		t.Fatalf("ledger has %d entries, want exactly 1", len(ledger.entries))
	}
	if !ledger.entries[0].Date.Equal(future) {
		t.Errorf("occurrence dated %s, want the future start date", ledger.entries[0].Date.Format("2006-01-02"))
	}
	if !rec.NextDueDate.Equal(future.AddDate(0, 1, 0)) {
		t.Errorf("cursor = %s, want one month after start", rec.NextDueDate.Format("2006-01-02"))
	}
	if rec.LastGeneratedDate == nil || !rec.LastGeneratedDate.Equal(future) {
		t.Errorf("last generated = %v, want the start date", rec.LastGeneratedDate)
	}
}

func TestUpdateFrequencyRecomputesCursor(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-01-01")
	last := date("2024-01-01")
	rec.LastGeneratedDate = &last
	rec.NextDueDate = date("2024-02-01")
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	updated, err := engine.Update(context.Background(), "user-1", "rec-1", UpdateRequest{
		Frequency: strptr("weekly"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.NextDueDate.Equal(date("2024-01-08")) {
		t.Errorf("cursor = %s, want 2024-01-08 (one week after last generated)",
			updated.NextDueDate.Format("2006-01-02"))
	}
}

func TestUpdateFrequencyAnchorsOnStartDateWhenNeverGenerated(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-01-01")
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	updated, err := engine.Update(context.Background(), "user-1", "rec-1", UpdateRequest{
		Frequency: strptr("daily"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.NextDueDate.Equal(date("2024-01-02")) {
		t.Errorf("cursor = %s, want 2024-01-02", updated.NextDueDate.Format("2006-01-02"))
	}
}

func TestUpdateOtherFieldsLeaveCursorAlone(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-02-01")
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	amount := 25.00
	updated, err := engine.Update(context.Background(), "user-1", "rec-1", UpdateRequest{
		Amount:      &amount,
		Description: strptr("Spotify"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.NextDueDate.Equal(date("2024-02-01")) {
		t.Errorf("cursor moved to %s on a non-frequency update", updated.NextDueDate.Format("2006-01-02"))
	}
	if !updated.Amount.Equal(decimal.RequireFromString("25")) {
		t.Errorf("amount = %s, want 25", updated.Amount)
	}
	if updated.Description == nil || *updated.Description != "Spotify" {
		t.Errorf("description = %v, want Spotify", updated.Description)
	}
}

func TestUpdateSameFrequencyKeepsCursor(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-02-01")
	last := date("2024-01-01")
	rec.LastGeneratedDate = &last
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	updated, err := engine.Update(context.Background(), "user-1", "rec-1", UpdateRequest{
		Frequency: strptr("monthly"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.NextDueDate.Equal(date("2024-02-01")) {
		t.Errorf("cursor moved to %s when frequency did not change", updated.NextDueDate.Format("2006-01-02"))
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	rec := testRecord(FrequencyMonthly, "2024-02-01")
	store := newFakeStore(rec)
	engine := NewEngine(newFakeLedger(), store)

	if err := engine.Delete(context.Background(), "user-2", "rec-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete: err = %v, want ErrNotFound", err)
	}
	if err := engine.Delete(context.Background(), "user-1", "rec-1"); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}

func strptr(s string) *string {
	return &s
}
