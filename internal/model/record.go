package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Record is one invoice as extracted from a PDF and typed into the refund form.
// Dates are ISO (YYYY-MM-DD) strings; an empty string means the value was not found.
type Record struct {
	Number       string              `json:"numer"`
	ServiceCount int                 `json:"liczba_uslug"`
	IssueDate    string              `json:"data_wystawienia"`
	ServiceDate  string              `json:"data_wykonania_uslugi"`
	City         string              `json:"miasto_wykonania"`
	UnitPrice    decimal.NullDecimal `json:"cena_jednostkowa"`
	TotalAmount  decimal.NullDecimal `json:"kwota_faktury"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	type Alias Record
	return json.Marshal(&struct {
		Number      *string `json:"numer"`
		IssueDate   *string `json:"data_wystawienia"`
		ServiceDate *string `json:"data_wykonania_uslugi"`
		City        *string `json:"miasto_wykonania"`
		*Alias
	}{
		Number:      nullString(r.Number),
		IssueDate:   nullString(r.IssueDate),
		ServiceDate: nullString(r.ServiceDate),
		City:        nullString(r.City),
		Alias:       (*Alias)(&r),
	})
}

// Amount returns the invoice total, or zero when it is unknown.
func (r Record) Amount() decimal.Decimal {
	if !r.TotalAmount.Valid {
		return decimal.Zero
	}
	return r.TotalAmount.Decimal
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func init() {
	// The dashboard reads amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
