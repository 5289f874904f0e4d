package services

import (
	"context"
	"strings"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/diewo77/facturacion/validation"
	"github.com/shopspring/decimal"
)

// CatalogService is the thin CRUD layer over clients and products.
type CatalogService struct {
	store store.Store
}

func NewCatalogService(st store.Store) *CatalogService {
	return &CatalogService{store: st}
}

type ClientInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

func (in *ClientInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
}

func (s *CatalogService) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}
	c := &models.Client{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

func (s *CatalogService) ListClients(ctx context.Context, opts store.ListOptions) ([]models.Client, int64, error) {
	return s.store.ListClients(ctx, opts)
}

func (s *CatalogService) UpdateClient(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}
	c := &models.Client{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return s.store.GetClient(ctx, id)
}

func (s *CatalogService) DeleteClient(ctx context.Context, id uint) error {
	return s.store.DeleteClient(ctx, id)
}

// ProductInput creates or updates a product. On update, nil numeric fields keep their current value.
type ProductInput struct {
	Code          string           `json:"code" validate:"required,max=50"`
	Name          string           `json:"name" validate:"required,max=255"`
	Description   string           `json:"description"`
	UnitPrice     *decimal.Decimal `json:"unitPrice"`
	Stock         *int             `json:"stock"`
	TaxPercentage *decimal.Decimal `json:"taxPercentage"`
}

func (in *ProductInput) validate(creating bool) validation.Violations {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Struct(in)
	if in.UnitPrice == nil {
		if creating {
			v["unitPrice"] = "required"
		}
	} else {
		validation.NonNegativeDecimal("unitPrice", *in.UnitPrice, v)
	}
	if in.Stock != nil {
		validation.NonNegativeInt("stock", *in.Stock, v)
	}
	if in.TaxPercentage != nil {
		validation.NonNegativeDecimal("taxPercentage", *in.TaxPercentage, v)
	}
	return v
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if v := in.validate(true); !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}
	p := &models.Product{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		UnitPrice:     *in.UnitPrice,
		TaxPercentage: models.DefaultTaxPercentage,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.TaxPercentage != nil {
		p.TaxPercentage = *in.TaxPercentage
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, opts store.ListOptions) ([]models.Product, int64, error) {
	return s.store.ListProducts(ctx, opts)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if v := in.validate(false); !v.Empty() {
		return nil, apperr.NewValidationError(v)
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Code, p.Name, p.Description = in.Code, in.Name, in.Description
	if in.UnitPrice != nil {
		p.UnitPrice = *in.UnitPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.TaxPercentage != nil {
		p.TaxPercentage = *in.TaxPercentage
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct fails with apperr.ErrProductInUse while any invoice line references the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.store.DeleteProduct(ctx, id)
}
