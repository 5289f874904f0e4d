// Package apperr defines the error taxonomy shared by the store, the services and the HTTP layer.
//
// Every domain error unwraps to one of the category sentinels below, so callers can branch on the
// category with errors.Is (ErrNotFound, ErrConflict...) or on the precise failure with the coded
// values (ErrClientNotFound, ErrAlreadyPaid...).
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/facturacion/validation"
)

// Categories.
var (
	ErrValidation        = errors.New("validation_failed")
	ErrNotFound          = errors.New("not_found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrInUse             = errors.New("in_use")
	ErrStateTransition   = errors.New("invalid_state_transition")
)

// Error is a coded domain error. Two *Error values match under errors.Is when their codes are equal,
// so the package-level values can be used as templates with WithMessage.
type Error struct {
	Code    string
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrEmptyInvoice           = &Error{Code: "EMPTY_INVOICE", Kind: ErrValidation, Message: "invoice must contain at least one line"}
	ErrInvalidInput           = &Error{Code: "INVALID_INPUT", Kind: ErrValidation, Message: "invalid input"}
	ErrDuplicateInvoiceNumber = &Error{Code: "DUPLICATE_INVOICE_NUMBER", Kind: ErrConflict, Message: "invoice number already exists"}
	ErrDuplicateProductCode   = &Error{Code: "DUPLICATE_PRODUCT_CODE", Kind: ErrConflict, Message: "product code already exists"}
	ErrClientNotFound         = &Error{Code: "CLIENT_NOT_FOUND", Kind: ErrNotFound, Message: "client not found"}
	ErrProductNotFound        = &Error{Code: "PRODUCT_NOT_FOUND", Kind: ErrNotFound, Message: "product not found"}
	ErrInvoiceNotFound        = &Error{Code: "INVOICE_NOT_FOUND", Kind: ErrNotFound, Message: "invoice not found"}
	ErrAlreadyPaidOrNotFound  = &Error{Code: "ALREADY_PAID", Kind: ErrStateTransition, Message: "invoice is already paid or does not exist"}
	ErrProductInUse           = &Error{Code: "PRODUCT_IN_USE", Kind: ErrInUse, Message: "product is referenced by invoice lines"}
	ErrClientInUse            = &Error{Code: "CLIENT_IN_USE", Kind: ErrInUse, Message: "client has invoices"}
)

// ValidationError reports malformed or missing input, keyed by json field name.
type ValidationError struct {
	Violations validation.Violations
}

func NewValidationError(v validation.Violations) *ValidationError {
	return &ValidationError{Violations: v}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, rule := range e.Violations {
		fields = append(fields, f+"="+rule)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StockShortage describes one product that cannot cover the requested quantity.
type StockShortage struct {
	ProductID   uint   `json:"productId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// InsufficientStockError lists every product that blocked an issuance.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortages) == 0 {
		return "insufficient stock"
	}
	s := e.Shortages[0]
	msg := fmt.Sprintf("insufficient stock for %q: available %d, requested %d", s.ProductName, s.Available, s.Requested)
	if n := len(e.Shortages) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Code returns the machine readable code for err, or INTERNAL for anything outside the taxonomy.
func Code(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "VALIDATION_FAILED"
	}
	var se *InsufficientStockError
	if errors.As(err, &se) {
		return "INSUFFICIENT_STOCK"
	}
	return "INTERNAL"
}

// IsDomain reports whether err belongs to one of the known categories.
func IsDomain(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInsufficientStock, ErrInUse, ErrStateTransition} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether the failure came from the store or the system rather than from the
// request itself. Retrying a domain error gives the same answer.
func IsRetryable(err error) bool {
	if err == nil || IsDomain(err) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
