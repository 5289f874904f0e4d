package pricing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name                  string
		qty                   int
		price, pct            string
		subtotal, tax, total string
	}{
		{"21% on 2 x 10", 2, "10", "21", "20", "4.2", "24.2"},
		{"10% on 1 x 5", 1, "5", "10", "5", "0.5", "5.5"},
		{"zero rate", 3, "7.25", "0", "21.75", "0", "21.75"},
		{"free item", 4, "0", "21", "0", "0", "0"},
		{"fractional rate", 1, "100", "5.5", "100", "5.5", "105.5"},
		{"no mid rounding", 3, "0.333", "21", "0.999", "0.20979", "1.20879"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLine(tt.qty, d(tt.price), d(tt.pct))
			if err != nil {
				t.Fatalf("ComputeLine: %v", err)
			}
			if !got.Subtotal.Equal(d(tt.subtotal)) {
				t.Errorf("subtotal = %s, want %s", got.Subtotal, tt.subtotal)
			}
			if !got.TaxAmount.Equal(d(tt.tax)) {
				t.Errorf("tax = %s, want %s", got.TaxAmount, tt.tax)
			}
			if !got.Total.Equal(d(tt.total)) {
				t.Errorf("total = %s, want %s", got.Total, tt.total)
			}
		})
	}
}

func TestComputeLineRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		qty        int
		price, pct string
	}{
		{"zero quantity", 0, "1", "21"},
		{"negative quantity", -2, "1", "21"},
		{"negative price", 1, "-0.01", "21"},
		{"negative tax", 1, "1", "-1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ComputeLine(c.qty, d(c.price), d(c.pct))
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("invalid input should be a validation error")
			}
		})
	}
}

func TestComputeInvoiceTotalsExample(t *testing.T) {
	l1, _ := ComputeLine(2, d("10"), d("21"))
	l2, _ := ComputeLine(1, d("5"), d("10"))
	tot := ComputeInvoiceTotals([]Line{l1, l2})

	if !tot.Subtotal.Equal(d("25")) || !tot.TaxTotal.Equal(d("4.7")) || !tot.GrandTotal.Equal(d("29.7")) {
		t.Fatalf("totals = %s/%s/%s, want 25/4.7/29.7", tot.Subtotal, tot.TaxTotal, tot.GrandTotal)
	}
	if len(tot.Breakdown) != 2 {
		t.Fatalf("expected 2 tax buckets, got %d", len(tot.Breakdown))
	}
	if !tot.Breakdown[0].Rate.Equal(d("10")) || !tot.Breakdown[0].TaxAmount.Equal(d("0.5")) {
		t.Errorf("first bucket = %+v", tot.Breakdown[0])
	}
	if !tot.Breakdown[1].Rate.Equal(d("21")) || !tot.Breakdown[1].Base.Equal(d("20")) {
		t.Errorf("second bucket = %+v", tot.Breakdown[1])
	}
}

func TestComputeInvoiceTotalsMergesEqualRates(t *testing.T) {
	l1, _ := ComputeLine(1, d("10"), d("21"))
	l2, _ := ComputeLine(2, d("3"), d("21.0"))
	tot := ComputeInvoiceTotals([]Line{l1, l2})
	if len(tot.Breakdown) != 1 {
		t.Fatalf("expected a single bucket, got %d", len(tot.Breakdown))
	}
	if !tot.Breakdown[0].Base.Equal(d("16")) || !tot.Breakdown[0].TaxAmount.Equal(d("3.36")) {
		t.Errorf("bucket = %+v", tot.Breakdown[0])
	}
}

func TestComputeInvoiceTotalsEmpty(t *testing.T) {
	tot := ComputeInvoiceTotals(nil)
	if !tot.Subtotal.IsZero() || !tot.TaxTotal.IsZero() || !tot.GrandTotal.IsZero() {
		t.Fatalf("expected zero totals, got %+v", tot)
	}
	if tot.Breakdown == nil || len(tot.Breakdown) != 0 {
		t.Fatalf("expected empty breakdown")
	}
}

func TestTotalsIdentityHoldsForRandomLines(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rates := []string{"0", "4", "10", "21", "5.5"}
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(8)
		lines := make([]Line, 0, n)
		for j := 0; j < n; j++ {
			price := decimal.New(rng.Int63n(1_000_000), -int32(rng.Intn(4)))
			l, err := ComputeLine(1+rng.Intn(50), price, d(rates[rng.Intn(len(rates))]))
			if err != nil {
				t.Fatalf("ComputeLine: %v", err)
			}
			lines = append(lines, l)
		}
		tot := ComputeInvoiceTotals(lines)
		diff := tot.Subtotal.Add(tot.TaxTotal).Sub(tot.GrandTotal).Abs()
		if diff.GreaterThan(d("1e-9")) {
			t.Fatalf("iteration %d: subtotal+tax != grand (%s + %s vs %s)", i, tot.Subtotal, tot.TaxTotal, tot.GrandTotal)
		}
		var bucketTax decimal.Decimal
		for _, b := range tot.Breakdown {
			bucketTax = bucketTax.Add(b.TaxAmount)
		}
		if !bucketTax.Equal(tot.TaxTotal) {
			t.Fatalf("iteration %d: breakdown tax %s != tax total %s", i, bucketTax, tot.TaxTotal)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(d("4.705")); !got.Equal(d("4.71")) {
		t.Fatalf("Round2 = %s", got)
	}
}
