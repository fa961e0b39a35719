package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionBase holds the fields shared by expenses, incomes and investment transactions.
type TransactionBase struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Touch stamps the record: CreatedAt is set once, UpdatedAt on every call.
func (b *TransactionBase) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
