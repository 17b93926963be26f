package recurring

import (
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is the schedule definition for one repeating
// transaction. NextDueDate is the cursor: the earliest occurrence that has
// not been materialized into the ledger yet.
type RecurringTransaction struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	CategoryID        *string         `db:"category_id" json:"category_id"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Type              string          `db:"type" json:"type"` // "income" | "expense"
	Description       *string         `db:"description" json:"description,omitempty"`
	Frequency         Frequency       `db:"frequency" json:"frequency"`
	StartDate         time.Time       `db:"start_date" json:"start_date"`
	EndDate           *time.Time      `db:"end_date" json:"end_date,omitempty"`
	NextDueDate       time.Time       `db:"next_due_date" json:"next_due_date"`
	LastGeneratedDate *time.Time      `db:"last_generated_date" json:"last_generated_date,omitempty"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Entry is one ledger row owed by a recurrence. The engine hands these to
// the Ledger; it never writes the transactions table itself.
type Entry struct {
	UserID      string
	CategoryID  *string
	RecurringID string
	Amount      decimal.Decimal
	Type        string
	Description string
	Date        time.Time
}

type CreateRequest struct {
	CategoryID    *string `json:"category_id"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Description   *string `json:"description"`
	Frequency     string  `json:"frequency"`
	StartDate     string  `json:"start_date"` // YYYY-MM-DD
	EndDate       *string `json:"end_date"`
	IsActive      *bool   `json:"is_active"`
	GenerateFirst bool    `json:"generate_first"`
}

// UpdateRequest is a partial patch; nil fields are left untouched. An empty
// string for CategoryID or EndDate clears the value.
type UpdateRequest struct {
	CategoryID  *string  `json:"category_id"`
	Amount      *float64 `json:"amount"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Frequency   *string  `json:"frequency"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	IsActive    *bool    `json:"is_active"`
}

// SweepResult reports what one sweep did to a single record.
type SweepResult struct {
	ID          string `json:"id"`
	Generated   int    `json:"generated"`
	Deactivated bool   `json:"deactivated,omitempty"`
}
