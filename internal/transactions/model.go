package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	CategoryID  *string         `db:"category_id" json:"category_id"`
	RecurringID *string         `db:"recurring_id" json:"recurring_id,omitempty"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        string          `db:"type" json:"type"` // "income" | "expense"
	Description *string         `db:"description" json:"description,omitempty"`
	Date        time.Time       `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type CreateTransactionRequest struct {
	CategoryID  *string `json:"category_id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Date        string  `json:"date"` // YYYY-MM-DD
}
