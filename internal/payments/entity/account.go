package entity

import (
	"github.com/google/uuid"
)

// Account is a user's money balance in the smallest currency unit.
// UserID is unique: a user has at most one account.
type Account struct {
	ID      uuid.UUID `json:"id"`
	UserID  int       `json:"user_id"`
	Balance int64     `json:"balance"`
}
