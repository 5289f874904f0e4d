// Package inventory checks and adjusts product stock.
package inventory

import (
	"context"

	"github.com/diewo77/facturacion/internal/apperr"
	"github.com/diewo77/facturacion/internal/models"
)

// StockStore is the part of the ledger the guard needs.
type StockStore interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetProducts(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
	DecrementStock(ctx context.Context, productID uint, qty int) (bool, error)
}

// Guard enforces that stock never goes negative.
type Guard struct {
	store StockStore
}

// NewGuard binds a guard to a store. Inside a transaction pass the transaction's store so the
// decrement takes part in it.
func NewGuard(store StockStore) *Guard {
	return &Guard{store: store}
}

// CheckAvailability reads the current stock of a product and reports whether qty units can be taken.
func (g *Guard) CheckAvailability(ctx context.Context, productID uint, qty int) error {
	p, err := g.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock < qty {
		return &apperr.InsufficientStockError{Shortages: []apperr.StockShortage{shortage(p, qty)}}
	}
	return nil
}

// Demand is a requested quantity of one product.
type Demand struct {
	ProductID uint
	Quantity  int
}

// CheckAll sums the demands per product and checks each total against current stock. Every
// product that falls short is reported in a single InsufficientStockError, ordered as the products
// first appear in demands.
func (g *Guard) CheckAll(ctx context.Context, demands []Demand) error {
	totals := make(map[uint]int)
	order := make([]uint, 0, len(demands))
	for _, d := range demands {
		if _, seen := totals[d.ProductID]; !seen {
			order = append(order, d.ProductID)
		}
		totals[d.ProductID] += d.Quantity
	}
	products, err := g.store.GetProducts(ctx, order)
	if err != nil {
		return err
	}
	var shortages []apperr.StockShortage
	for _, id := range order {
		p, ok := products[id]
		if !ok {
			return apperr.ErrProductNotFound.WithMessage("product %d not found", id)
		}
		if p.Stock < totals[id] {
			shortages = append(shortages, shortage(p, totals[id]))
		}
	}
	if len(shortages) > 0 {
		return &apperr.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// ReserveAndDecrement takes qty units of a product. The store re-checks the stock at write time, so
// a check made earlier that has since gone stale fails here instead of driving stock negative.
func (g *Guard) ReserveAndDecrement(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return apperr.ErrInvalidInput.WithMessage("quantity must be positive, got %d", qty)
	}
	applied, err := g.store.DecrementStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	p, err := g.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return &apperr.InsufficientStockError{Shortages: []apperr.StockShortage{shortage(p, qty)}}
}

func shortage(p *models.Product, requested int) apperr.StockShortage {
	return apperr.StockShortage{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: requested}
}

