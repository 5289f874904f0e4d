package services

import (
	"context"
	"strings"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/logger"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/diewo77/facturacion/validation"
	"github.com/shopspring/decimal"
)

// MarkPaid moves a pending invoice to paid. Paying twice, or paying an unknown invoice, fails
// with apperr.ErrAlreadyPaidOrNotFound.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint) error {
	if err := s.store.MarkInvoicePaid(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.metrics.ObservePaid()
	logger.Info(ctx, "invoice paid", "id", id)
	return nil
}

// DeleteInvoice removes the invoice and its lines in one transaction. Stock taken at issuance is
// not given back.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uint) error {
	var removed int64
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		n, err := tx.DeleteInvoiceLines(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteInvoice(ctx, id)
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveDeleted()
	logger.Info(ctx, "invoice deleted", "id", id, "lines", removed)
	return nil
}

// InvoiceFields are the header columns UpdateInvoiceFields may overwrite. Nil means unchanged.
type InvoiceFields struct {
	Number     *string          `json:"number"`
	ClientID   *uint            `json:"clientId"`
	Date       *string          `json:"date"`
	Status     *string          `json:"status"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
	TaxTotal   *decimal.Decimal `json:"taxTotal"`
	GrandTotal *decimal.Decimal `json:"grandTotal"`
}

// UpdateInvoiceFields is an administrative correction path. It writes the given header values
// as-is: totals are not recomputed from the lines and status may be set to any known value,
// bypassing the pending -> paid state machine. Only shape checks are applied (known status,
// existing client, unique number, non-negative amounts).
func (s *InvoiceService) UpdateInvoiceFields(ctx context.Context, id uint, f InvoiceFields) (*models.Invoice, error) {
	v := make(validation.Violations)
	cols := map[string]any{}
	if f.Number != nil {
		n := strings.TrimSpace(*f.Number)
		validation.Required("number", n, v)
		cols["number"] = n
	}
	if f.ClientID != nil {
		if *f.ClientID == 0 {
			v["clientId"] = "required"
		}
		cols["client_id"] = *f.ClientID
	}
	if f.Date != nil {
		d, err := parseDate(*f.Date)
		if err != nil {
			v["date"] = "invalid_date"
		}
		cols["issue_date"] = d
	}
	if f.Status != nil {
		st, err := models.ParseInvoiceStatus(*f.Status)
		if err != nil {
			v["status"] = "invalid_value"
		}
		cols["status"] = st
	}
	for name, amount := range map[string]*decimal.Decimal{"subtotal": f.Subtotal, "taxTotal": f.TaxTotal, "grandTotal": f.GrandTotal} {
		if amount == nil {
			continue
		}
		validation.NonNegativeDecimal(name, *amount, v)
	}
	if f.Subtotal != nil {
		cols["subtotal"] = *f.Subtotal
	}
	if f.TaxTotal != nil {
		cols["tax_total"] = *f.TaxTotal
	}
	if f.GrandTotal != nil {
		cols["grand_total"] = *f.GrandTotal
	}
	if !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}

	bypassed := false
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		cur, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if st, ok := cols["status"].(models.InvoiceStatus); ok && st != cur.Status && !cur.Status.CanTransitionTo(st) {
			bypassed = true
		}
		if f.ClientID != nil {
			if _, err := tx.GetClient(ctx, *f.ClientID); err != nil {
				return err
			}
		}
		return tx.UpdateInvoice(ctx, id, cols)
	})
	if err != nil {
		return nil, err
	}
	logger.Warn(ctx, "invoice header overwritten", "id", id, "fields", len(cols), "status_transition_bypassed", bypassed)
	return s.store.GetInvoice(ctx, id)
}
