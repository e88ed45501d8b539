package entity

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return s == Approved || s == Rejected
}

// Order is the ledger record. Amount is the ordered quantity and
// UnitPrice is money in the smallest unit; the settlement cost is
// Amount * UnitPrice on the payments side.
type Order struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"user_id"`
	ProductID   int       `json:"product_id"`
	Amount      int       `json:"amount"`
	UnitPrice   int       `json:"unit_price"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
