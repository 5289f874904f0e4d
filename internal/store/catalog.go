package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/models"
	"gorm.io/gorm"
)

func (s *GormStore) CreateClient(ctx context.Context, c *models.Client) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *GormStore) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrClientNotFound.WithMessage("client %d not found", id)
		}
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return &c, nil
}

func (s *GormStore) ListClients(ctx context.Context, opts ListOptions) ([]models.Client, int64, error) {
	q := s.conn(ctx).Model(&models.Client{})
	if opts.Query != "" {
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like(opts.Query), like(opts.Query))
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	var clients []models.Client
	if err := paginate(q.Order("name"), opts).Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return clients, total, nil
}

func (s *GormStore) UpdateClient(ctx context.Context, c *models.Client) error {
	res := s.conn(ctx).Model(&models.Client{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"address": c.Address,
	})
	if res.Error != nil {
		return fmt.Errorf("update client %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrClientNotFound.WithMessage("client %d not found", c.ID)
	}
	return nil
}

// DeleteClient refuses to remove a client that still has invoices.
func (s *GormStore) DeleteClient(ctx context.Context, id uint) error {
	return s.WithinTx(ctx, func(tx Store) error {
		t := tx.(*GormStore)
		var n int64
		if err := t.conn(ctx).Model(&models.Invoice{}).Where("client_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("count client invoices: %w", err)
		}
		if n > 0 {
			return apperr.ErrClientInUse.WithMessage("client %d has %d invoice(s)", id, n)
		}
		res := t.conn(ctx).Delete(&models.Client{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete client %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrClientNotFound.WithMessage("client %d not found", id)
		}
		return nil
	})
}

func (s *GormStore) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Client{}).Count(&n).Error
	return n, err
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicateProductCode.WithMessage("product code %q already exists", p.Code)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *GormStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProductNotFound.WithMessage("product %d not found", id)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// GetProducts loads the given products keyed by id. Missing ids are simply absent from the map.
func (s *GormStore) GetProducts(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (s *GormStore) ListProducts(ctx context.Context, opts ListOptions) ([]models.Product, int64, error) {
	q := s.conn(ctx).Model(&models.Product{})
	if opts.Query != "" {
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like(opts.Query), like(opts.Query))
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	var products []models.Product
	if err := paginate(q.Order("name"), opts).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (s *GormStore) LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := s.conn(ctx).Where("stock <= ?", threshold).Order("stock, name").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	return products, nil
}

func (s *GormStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := s.conn(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"code":           p.Code,
		"name":           p.Name,
		"description":    p.Description,
		"unit_price":     p.UnitPrice,
		"stock":          p.Stock,
		"tax_percentage": p.TaxPercentage,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperr.ErrDuplicateProductCode.WithMessage("product code %q already exists", p.Code)
		}
		return fmt.Errorf("update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrProductNotFound.WithMessage("product %d not found", p.ID)
	}
	return nil
}

// DeleteProduct removes a product unless an invoice line references it.
func (s *GormStore) DeleteProduct(ctx context.Context, id uint) error {
	return s.WithinTx(ctx, func(tx Store) error {
		t := tx.(*GormStore)
		var n int64
		if err := t.conn(ctx).Model(&models.InvoiceLine{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("count product lines: %w", err)
		}
		if n > 0 {
			return apperr.ErrProductInUse.WithMessage("product %d is used by %d invoice line(s)", id, n)
		}
		res := t.conn(ctx).Delete(&models.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrProductNotFound.WithMessage("product %d not found", id)
		}
		return nil
	})
}

func (s *GormStore) DecrementStock(ctx context.Context, productID uint, qty int) (bool, error) {
	res := s.conn(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("decrement stock of product %d: %w", productID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
