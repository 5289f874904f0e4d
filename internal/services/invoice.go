package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/inventory"
	"github.com/diewo77/facturacion/internal/logger"
	"github.com/diewo77/facturacion/internal/metrics"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/pricing"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/diewo77/facturacion/validation"
	"github.com/shopspring/decimal"
)

// InvoiceService issues invoices and drives their lifecycle.
type InvoiceService struct {
	store   store.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewInvoiceService(st store.Store, m *metrics.Metrics) *InvoiceService {
	return &InvoiceService{store: st, metrics: m, now: time.Now}
}

// LineRequest is one requested invoice line. UnitPrice and TaxPercentage default to the
// product's current values when omitted.
type LineRequest struct {
	ProductID     uint             `json:"productId" validate:"required"`
	Quantity      int              `json:"quantity" validate:"gt=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice,omitempty"`
	TaxPercentage *decimal.Decimal `json:"taxPercentage,omitempty"`
}

// IssueRequest is the input of Issue. Totals are never taken from the caller.
type IssueRequest struct {
	Number   string        `json:"number" validate:"required,max=50"`
	ClientID uint          `json:"clientId" validate:"required"`
	Date     string        `json:"date" validate:"required"`
	Lines    []LineRequest `json:"lines" validate:"dive"`
}

// IssueResult is the committed invoice with its computed totals.
type IssueResult struct {
	Invoice *models.Invoice `json:"invoice"`
	Totals  pricing.Totals  `json:"totals"`
}

// Issue validates the request, prices it and commits the invoice, its lines and the stock
// decrements in one transaction. Nothing is written unless every step succeeds.
func (s *InvoiceService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	start := time.Now()
	res, err := s.issue(ctx, req)
	if err != nil {
		s.metrics.ObserveIssueFailure(apperr.Code(err), time.Since(start))
		logger.Warn(ctx, "invoice issuance failed",
			"number", req.Number, "code", apperr.Code(err), "retryable", apperr.IsRetryable(err), "error", err)
		return nil, err
	}
	units := 0
	for _, l := range res.Invoice.Lines {
		units += l.Quantity
	}
	s.metrics.ObserveIssued(time.Since(start), units)
	logger.Info(ctx, "invoice issued",
		"id", res.Invoice.ID, "number", res.Invoice.Number, "client_id", res.Invoice.ClientID,
		"lines", len(res.Invoice.Lines), "grand_total", res.Totals.GrandTotal.String())
	return res, nil
}

func (s *InvoiceService) issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if len(req.Lines) == 0 {
		return nil, apperr.ErrEmptyInvoice
	}
	req.Number = strings.TrimSpace(req.Number)
	v := validation.Struct(req)
	issueDate, err := parseDate(req.Date)
	if err != nil && req.Date != "" {
		v["date"] = "invalid_date"
	}
	if !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}

	exists, err := s.store.InvoiceNumberExists(ctx, req.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrDuplicateInvoiceNumber.WithMessage("invoice number %q already exists", req.Number)
	}

	client, err := s.store.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(req.Lines))
	demands := make([]inventory.Demand, 0, len(req.Lines))
	for _, l := range req.Lines {
		ids = append(ids, l.ProductID)
		demands = append(demands, inventory.Demand{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	products, err := s.store.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, apperr.ErrProductNotFound.WithMessage("product %d not found", id)
		}
	}

	if err := inventory.NewGuard(s.store).CheckAll(ctx, demands); err != nil {
		return nil, err
	}

	priced := make([]pricing.Line, 0, len(req.Lines))
	for i, l := range req.Lines {
		p := products[l.ProductID]
		price, pct := p.UnitPrice, p.TaxPercentage
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		if l.TaxPercentage != nil {
			pct = *l.TaxPercentage
		}
		line, err := pricing.ComputeLine(l.Quantity, price, pct)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		priced = append(priced, line)
	}
	totals := pricing.ComputeInvoiceTotals(priced)

	inv := &models.Invoice{
		Number:     req.Number,
		ClientID:   client.ID,
		IssueDate:  issueDate,
		Subtotal:   totals.Subtotal,
		TaxTotal:   totals.TaxTotal,
		GrandTotal: totals.GrandTotal,
		Status:     models.InvoiceStatusPending,
	}
	lines := make([]models.InvoiceLine, len(priced))
	for i, pl := range priced {
		lines[i] = models.InvoiceLine{
			ProductID:     req.Lines[i].ProductID,
			Quantity:      pl.Quantity,
			UnitPrice:     pl.UnitPrice,
			TaxPercentage: pl.TaxPercentage,
			Subtotal:      pl.Subtotal,
			TaxAmount:     pl.TaxAmount,
			Total:         pl.Total,
		}
	}

	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
		}
		if err := tx.CreateInvoiceLines(ctx, lines); err != nil {
			return err
		}
		guard := inventory.NewGuard(tx)
		for _, l := range lines {
			if err := guard.ReserveAndDecrement(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv.Client = client
	for i := range lines {
		lines[i].Product = products[lines[i].ProductID]
	}
	inv.Lines = lines
	return &IssueResult{Invoice: inv, Totals: totals}, nil
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC 3339 timestamp and returns it in UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// NextNumber suggests the next free number of the form FAC-YYYY-NNNN for the current year.
func (s *InvoiceService) NextNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("FAC-%d-", s.now().Year())
	n, err := s.store.CountInvoicesWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	for i := n + 1; ; i++ {
		candidate := fmt.Sprintf("%s%04d", prefix, i)
		exists, err := s.store.InvoiceNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// Get returns an invoice with its client and lines.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

// List returns invoice headers newest first.
func (s *InvoiceService) List(ctx context.Context, opts store.ListOptions) ([]models.Invoice, int64, error) {
	return s.store.ListInvoices(ctx, opts)
}
