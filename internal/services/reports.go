package services

import (
	"context"
	"time"

	"github.com/diewo77/facturacion/internal/models"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the highest stock still reported as low.
const LowStockThreshold = 5

// ReportService computes the dashboard figures.
type ReportService struct {
	store store.Store
	now   func() time.Time
}

func NewReportService(st store.Store) *ReportService {
	return &ReportService{store: st, now: time.Now}
}

type DashboardStats struct {
	Clients           int64                       `json:"clients"`
	Products          int64                       `json:"products"`
	Invoices          int64                       `json:"invoices"`
	PendingInvoices   int64                       `json:"pendingInvoices"`
	PaidInvoices      int64                       `json:"paidInvoices"`
	TotalSales        decimal.Decimal             `json:"totalSales"`
	AverageInvoice    decimal.Decimal             `json:"averageInvoice"`
	LowStock          int64                       `json:"lowStock"`
	OutOfStock        int64                       `json:"outOfStock"`
	StockDistribution map[models.StockLevel]int64 `json:"stockDistribution"`
}

func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	clients, err := s.store.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.store.InvoiceStats(ctx)
	if err != nil {
		return nil, err
	}
	dist, err := s.store.StockDistribution(ctx)
	if err != nil {
		return nil, err
	}
	avg := decimal.Zero
	if inv.Count > 0 {
		avg = inv.TotalSales.Div(decimal.NewFromInt(inv.Count))
	}
	return &DashboardStats{
		Clients:           clients,
		Products:          products,
		Invoices:          inv.Count,
		PendingInvoices:   inv.Pending,
		PaidInvoices:      inv.Paid,
		TotalSales:        inv.TotalSales,
		AverageInvoice:    avg,
		LowStock:          dist[models.StockLow],
		OutOfStock:        dist[models.StockOut],
		StockDistribution: dist,
	}, nil
}

type MonthlySales struct {
	Month    string          `json:"month"` // YYYY-MM
	Invoices int             `json:"invoices"`
	Total    decimal.Decimal `json:"total"`
}

// SalesByMonth buckets invoice grand totals over the last n calendar months, the current one
// included, oldest first. Months without sales are present with zero totals.
func (s *ReportService) SalesByMonth(ctx context.Context, n int) ([]MonthlySales, error) {
	if n <= 0 {
		n = 6
	}
	now := s.now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	invoices, err := s.store.InvoicesSince(ctx, first)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlySales, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlySales{Month: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, inv := range invoices {
		i, ok := index[inv.IssueDate.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		out[i].Invoices++
		out[i].Total = out[i].Total.Add(inv.GrandTotal)
	}
	return out, nil
}

func (s *ReportService) TopClients(ctx context.Context, limit int) ([]store.ClientTotal, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.TopClients(ctx, limit)
}

func (s *ReportService) LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold < 0 {
		threshold = LowStockThreshold
	}
	return s.store.LowStockProducts(ctx, threshold)
}
