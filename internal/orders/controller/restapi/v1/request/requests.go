package request

type CreateOrder struct {
	UserID      int    `json:"user_id" validate:"required,min=1"`
	ProductID   int    `json:"product_id" validate:"required,min=1"`
	Amount      int    `json:"amount" validate:"required,min=1"`
	UnitPrice   int    `json:"unit_price" validate:"min=0"`
	Description string `json:"description" validate:"max=512"`
}
