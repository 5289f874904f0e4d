// Package pricing computes invoice line and invoice totals.
//
// All arithmetic is done at full decimal precision; nothing is rounded here. Rounding to cents is a
// display concern (see Round2).
package pricing

import (
	"sort"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line holds the computed amounts of one invoice line.
type Line struct {
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Total         decimal.Decimal `json:"total"`
}

// TaxBucket is the share of an invoice taxed at one rate.
type TaxBucket struct {
	Rate      decimal.Decimal `json:"rate"`
	Base      decimal.Decimal `json:"base"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
}

// Totals aggregates the lines of an invoice.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Breakdown  []TaxBucket     `json:"taxBreakdown"`
}

// ComputeLine returns subtotal = quantity × unitPrice, tax = subtotal × taxPercentage / 100 and
// total = subtotal + tax.
func ComputeLine(quantity int, unitPrice, taxPercentage decimal.Decimal) (Line, error) {
	if quantity <= 0 {
		return Line{}, apperr.ErrInvalidInput.WithMessage("quantity must be a positive integer, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return Line{}, apperr.ErrInvalidInput.WithMessage("unit price must not be negative, got %s", unitPrice)
	}
	if taxPercentage.IsNegative() {
		return Line{}, apperr.ErrInvalidInput.WithMessage("tax percentage must not be negative, got %s", taxPercentage)
	}
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	tax := subtotal.Mul(taxPercentage).Div(hundred)
	return Line{
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TaxPercentage: taxPercentage,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         subtotal.Add(tax),
	}, nil
}

// ComputeInvoiceTotals sums the lines and groups tax by distinct rate, lowest rate first.
// An empty slice yields zero totals.
func ComputeInvoiceTotals(lines []Line) Totals {
	t := Totals{
		Subtotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
		Breakdown:  []TaxBucket{},
	}
	byRate := make(map[string]int)
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.TaxTotal = t.TaxTotal.Add(l.TaxAmount)
		t.GrandTotal = t.GrandTotal.Add(l.Total)

		// "21" and "21.0" are the same rate
		key := l.TaxPercentage.String()
		idx, ok := byRate[key]
		if !ok {
			idx = len(t.Breakdown)
			byRate[key] = idx
			t.Breakdown = append(t.Breakdown, TaxBucket{Rate: l.TaxPercentage, Base: decimal.Zero, TaxAmount: decimal.Zero})
		}
		t.Breakdown[idx].Base = t.Breakdown[idx].Base.Add(l.Subtotal)
		t.Breakdown[idx].TaxAmount = t.Breakdown[idx].TaxAmount.Add(l.TaxAmount)
	}
	sort.Slice(t.Breakdown, func(i, j int) bool {
		return t.Breakdown[i].Rate.LessThan(t.Breakdown[j].Rate)
	})
	return t
}

// Round2 rounds an amount to cents for display.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
