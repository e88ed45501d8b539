package response

type Error struct {
	Error string `json:"error"`
}

type CreateOrder struct {
	OrderID     string `json:"order_id"`
	UserID      int    `json:"user_id"`
	ProductID   int    `json:"product_id"`
	Amount      int    `json:"amount"`
	UnitPrice   int    `json:"unit_price"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type OrderStatus struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type Order struct {
	OrderID     string `json:"order_id"`
	ProductID   int    `json:"product_id"`
	Amount      int    `json:"amount"`
	UnitPrice   int    `json:"unit_price"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type Orders struct {
	UserID int     `json:"user_id"`
	Orders []Order `json:"orders"`
}
