package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

type line struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gt=0"`
}

type request struct {
	Number string `json:"number" validate:"required,max=5"`
	Email  string `json:"email" validate:"omitempty,email"`
	Lines  []line `json:"lines" validate:"dive"`
}

func TestStructUsesJSONPaths(t *testing.T) {
	v := Struct(request{
		Number: "TOO-LONG",
		Email:  "nope",
		Lines:  []line{{ProductID: 1, Quantity: 1}, {Quantity: 0}},
	})
	want := Violations{
		"number":             "too_long",
		"email":              "invalid_email",
		"lines[1].productId": "required",
		"lines[1].quantity":  "must_be_positive",
	}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for field, rule := range want {
		if v[field] != rule {
			t.Errorf("%s: got %q want %q", field, v[field], rule)
		}
	}
}

func TestStructValid(t *testing.T) {
	if v := Struct(&request{Number: "F-1", Lines: []line{{ProductID: 2, Quantity: 3}}}); !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestHelpers(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	NonNegativeInt("stock", -1, v)
	NonNegativeDecimal("price", decimal.RequireFromString("-0.01"), v)
	NonNegativeDecimal("tax", decimal.Zero, v)
	if v["name"] != "required" || v["stock"] != "must_not_be_negative" || v["price"] != "must_not_be_negative" {
		t.Fatalf("unexpected violations %v", v)
	}
	if _, ok := v["tax"]; ok {
		t.Fatalf("zero must be accepted")
	}
}
