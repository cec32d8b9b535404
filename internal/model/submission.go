package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Submission struct {
	ID            string          `json:"id"`
	RunID         string          `json:"run_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ServiceDate   string          `json:"service_date"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"` // filled
	CreatedAt     time.Time       `json:"created_at"`
}
