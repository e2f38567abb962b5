package models

import "github.com/shopspring/decimal"

// Payment statuses. The service only ever produces completed and partial;
// pending and failed exist because the client renders the full taxonomy.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPartial   = "partial"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// Payment represents a recorded EMI payment
type Payment struct {
	ID                    int64           `json:"id"`
	CustomerAccountNumber string          `json:"customer_account_number"`
	Amount                decimal.Decimal `json:"amount"`
	PaymentDate           string          `json:"payment_date"` // Format: YYYY-MM-DD
	Status                string          `json:"status"`
}
