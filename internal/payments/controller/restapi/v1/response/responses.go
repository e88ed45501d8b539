package response

type Error struct {
	Error string `json:"error"`
}

type Account struct {
	AccountID string `json:"account_id"`
	UserID    int    `json:"user_id"`
	Balance   int64  `json:"balance"`
}

type Deposit struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type Balance struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}
