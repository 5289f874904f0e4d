package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Invoice{}).Where("number = ?", number).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return n > 0, nil
}

func (s *GormStore) CountInvoicesWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Invoice{}).Where("number LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}

// CreateInvoice inserts the invoice header only; lines go through CreateInvoiceLines.
func (s *GormStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(inv).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicateInvoiceNumber.WithMessage("invoice number %q already exists", inv.Number)
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *GormStore) CreateInvoiceLines(ctx context.Context, lines []models.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("create invoice lines: %w", err)
	}
	return nil
}

// GetInvoice loads an invoice with its client and its lines (each with its product).
func (s *GormStore) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.conn(ctx).
		Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lines.Product").
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvoiceNotFound.WithMessage("invoice %d not found", id)
		}
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}
	return &inv, nil
}

// ListInvoices returns headers with their client, newest first.
func (s *GormStore) ListInvoices(ctx context.Context, opts ListOptions) ([]models.Invoice, int64, error) {
	q := s.conn(ctx).Model(&models.Invoice{})
	if opts.Status != "" {
		q = q.Where("invoices.status = ?", opts.Status)
	}
	if opts.Query != "" {
		q = q.Joins("JOIN clients ON clients.id = invoices.client_id").
			Where("LOWER(invoices.number) LIKE ? OR LOWER(clients.name) LIKE ?", like(opts.Query), like(opts.Query))
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	var invoices []models.Invoice
	if err := paginate(q.Preload("Client").Order("invoices.id DESC"), opts).Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, total, nil
}

// MarkInvoicePaid moves a pending invoice to paid in one conditional update.
func (s *GormStore) MarkInvoicePaid(ctx context.Context, id uint, paidAt time.Time) error {
	res := s.conn(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, models.InvoiceStatusPending).
		Updates(map[string]any{"status": models.InvoiceStatusPaid, "paid_at": paidAt})
	if res.Error != nil {
		return fmt.Errorf("mark invoice %d paid: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrAlreadyPaidOrNotFound.WithMessage("invoice %d is already paid or does not exist", id)
	}
	return nil
}

// UpdateInvoice writes raw header columns. It performs no state or totals checks.
func (s *GormStore) UpdateInvoice(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		var n int64
		if err := s.conn(ctx).Model(&models.Invoice{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("update invoice %d: %w", id, err)
		}
		if n == 0 {
			return apperr.ErrInvoiceNotFound.WithMessage("invoice %d not found", id)
		}
		return nil
	}
	res := s.conn(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperr.ErrDuplicateInvoiceNumber.WithMessage("invoice number %v already exists", fields["number"])
		}
		return fmt.Errorf("update invoice %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrInvoiceNotFound.WithMessage("invoice %d not found", id)
	}
	return nil
}

func (s *GormStore) DeleteInvoiceLines(ctx context.Context, invoiceID uint) (int64, error) {
	res := s.conn(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete lines of invoice %d: %w", invoiceID, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DeleteInvoice(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Invoice{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete invoice %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrInvoiceNotFound.WithMessage("invoice %d not found", id)
	}
	return nil
}

func (s *GormStore) CountInvoiceLines(ctx context.Context, invoiceID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.InvoiceLine{}).Where("invoice_id = ?", invoiceID).Count(&n).Error
	return n, err
}
