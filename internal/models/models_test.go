package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to InvoiceStatus
		want     bool
	}{
		{InvoiceStatusPending, InvoiceStatusPaid, true},
		{InvoiceStatusPaid, InvoiceStatusPending, false},
		{InvoiceStatusPaid, InvoiceStatusPaid, false},
		{InvoiceStatusPending, InvoiceStatusPending, false},
		{InvoiceStatus("void"), InvoiceStatusPaid, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	if s, err := ParseInvoiceStatus("paid"); err != nil || s != InvoiceStatusPaid {
		t.Fatalf("ParseInvoiceStatus(paid) = %q, %v", s, err)
	}
	if _, err := ParseInvoiceStatus("cancelled"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestProduct_Level(t *testing.T) {
	tests := []struct {
		stock int
		want  StockLevel
	}{
		{0, StockOut},
		{1, StockLow},
		{5, StockLow},
		{6, StockMedium},
		{10, StockMedium},
		{11, StockHigh},
	}
	for _, tt := range tests {
		p := &Product{Stock: tt.stock}
		if got := p.Level(); got != tt.want {
			t.Errorf("Level(%d) = %s, want %s", tt.stock, got, tt.want)
		}
	}
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{Code: "A", UnitPrice: decimal.RequireFromString("10.5")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"unitPrice":10.5`) {
		t.Fatalf("unexpected json: %s", b)
	}
}
