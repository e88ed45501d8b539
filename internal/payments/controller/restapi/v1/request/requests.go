package request

type CreateAccount struct {
	UserID int `json:"user_id" validate:"required,min=1"`
}

type Deposit struct {
	Amount int64 `json:"amount" validate:"min=0"`
}
