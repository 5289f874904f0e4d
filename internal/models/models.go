// Package models holds the persisted records of the invoicing ledger.
package models

import "github.com/shopspring/decimal"

func init() {
	// amounts go over the wire as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns the models in migration order (parents before children).
func All() []any {
	return []any{&Client{}, &Product{}, &Invoice{}, &InvoiceLine{}}
}
