// Package migrations embeds the per-service schemas. Each service owns
// a private database and applies only its own directory at startup.
package migrations

import "embed"

//go:embed orders/*.sql payments/*.sql
var FS embed.FS

const (
	OrdersDir   = "orders"
	PaymentsDir = "payments"
)
