// Package store is the durable ledger of clients, products, invoices and invoice lines.
package store

import (
	"context"
	"time"

	"github.com/diewo77/facturacion/internal/models"
	"github.com/shopspring/decimal"
)

// ListOptions narrows and pages list queries.
type ListOptions struct {
	Query  string
	Status models.InvoiceStatus
	Limit  int
	Offset int
}

// InvoiceStats aggregates the invoice table.
type InvoiceStats struct {
	Count      int64
	Pending    int64
	Paid       int64
	TotalSales decimal.Decimal
}

// ClientTotal is one row of the top clients ranking.
type ClientTotal struct {
	ClientID uint            `json:"clientId"`
	Name     string          `json:"name"`
	Invoices int64           `json:"invoices"`
	Total    decimal.Decimal `json:"total"`
}

// Store is the persistence boundary used by the services.
//
// Methods called on the Store passed to a WithinTx callback run inside that transaction.
type Store interface {
	CreateClient(ctx context.Context, c *models.Client) error
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	ListClients(ctx context.Context, opts ListOptions) ([]models.Client, int64, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id uint) error

	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetProducts(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]models.Product, int64, error)
	LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	// DecrementStock subtracts qty only if the product holds at least qty units.
	// It reports false when no row was changed.
	DecrementStock(ctx context.Context, productID uint, qty int) (bool, error)

	InvoiceNumberExists(ctx context.Context, number string) (bool, error)
	CountInvoicesWithPrefix(ctx context.Context, prefix string) (int64, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	CreateInvoiceLines(ctx context.Context, lines []models.InvoiceLine) error
	GetInvoice(ctx context.Context, id uint) (*models.Invoice, error)
	ListInvoices(ctx context.Context, opts ListOptions) ([]models.Invoice, int64, error)
	MarkInvoicePaid(ctx context.Context, id uint, paidAt time.Time) error
	UpdateInvoice(ctx context.Context, id uint, fields map[string]any) error
	DeleteInvoiceLines(ctx context.Context, invoiceID uint) (int64, error)
	DeleteInvoice(ctx context.Context, id uint) error
	CountInvoiceLines(ctx context.Context, invoiceID uint) (int64, error)

	CountClients(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	InvoiceStats(ctx context.Context) (InvoiceStats, error)
	StockDistribution(ctx context.Context) (map[models.StockLevel]int64, error)
	InvoicesSince(ctx context.Context, since time.Time) ([]models.Invoice, error)
	TopClients(ctx context.Context, limit int) ([]ClientTotal, error)

	// WithinTx runs fn in a single transaction, committing when fn returns nil and rolling back
	// otherwise. Write transactions are serialized.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
