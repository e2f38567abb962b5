package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Customer represents a loan customer
type Customer struct {
	AccountNumber string          `json:"account_number"`
	Name          string          `json:"name"`
	Mobile        string          `json:"mobile"`
	Email         string          `json:"email,omitempty"`
	EMIDue        int             `json:"emi_due"`
	EMIAmount     decimal.Decimal `json:"emi_amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	IssueDate     string          `json:"issue_date"` // Format: YYYY-MM-DD
	Tenure        int             `json:"tenure"`
}
