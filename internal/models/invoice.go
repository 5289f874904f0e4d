package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// CanTransitionTo reports whether the state machine allows s -> next.
// The only transition is pending -> paid.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return s == InvoiceStatusPending && next == InvoiceStatusPaid
}

// ParseInvoiceStatus validates a raw status value.
func ParseInvoiceStatus(raw string) (InvoiceStatus, error) {
	s := InvoiceStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown invoice status %q", raw)
	}
	return s, nil
}

// Invoice is an issued invoice. Its amounts are frozen at issuance and never recomputed on read.
type Invoice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Number     string          `gorm:"size:50;not null;uniqueIndex" json:"number"`
	ClientID   uint            `gorm:"index;not null" json:"clientId"`
	Client     *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	IssueDate  time.Time       `gorm:"not null;index" json:"date"`
	Subtotal   decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	TaxTotal   decimal.Decimal `gorm:"type:numeric;not null" json:"taxTotal"`
	GrandTotal decimal.Decimal `gorm:"type:numeric;not null" json:"grandTotal"`
	Status     InvoiceStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaidAt     *time.Time      `json:"paidAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// IsPaid reports whether the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// InvoiceLine is one product entry of an invoice, with price and tax captured at issuance.
type InvoiceLine struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceID     uint            `gorm:"index;not null" json:"invoiceId"`
	ProductID     uint            `gorm:"index;not null" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity      int             `gorm:"not null;check:chk_invoice_lines_quantity,quantity > 0" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	TaxPercentage decimal.Decimal `gorm:"type:numeric;not null" json:"taxPercentage"`
	Subtotal      decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"taxAmount"`
	Total         decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
}
