package store

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/facturacion/internal/models"
	"github.com/shopspring/decimal"
)

// InvoiceStats counts invoices per status. Sums are rounded to cents since sqlite adds numerics
// as floating point.
func (s *GormStore) InvoiceStats(ctx context.Context) (InvoiceStats, error) {
	var row struct {
		Count   int64
		Pending int64
		Paid    int64
		Total   decimal.NullDecimal
	}
	err := s.conn(ctx).Model(&models.Invoice{}).
		Select(
			"COUNT(*) AS count, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid, "+
				"SUM(grand_total) AS total",
			models.InvoiceStatusPending, models.InvoiceStatusPaid,
		).
		Scan(&row).Error
	if err != nil {
		return InvoiceStats{}, fmt.Errorf("invoice stats: %w", err)
	}
	stats := InvoiceStats{Count: row.Count, Pending: row.Pending, Paid: row.Paid, TotalSales: decimal.Zero}
	if row.Total.Valid {
		stats.TotalSales = row.Total.Decimal.Round(2)
	}
	return stats, nil
}

// StockDistribution counts products per stock level (see models.Product.Level).
func (s *GormStore) StockDistribution(ctx context.Context) (map[models.StockLevel]int64, error) {
	var rows []struct {
		Level string
		N     int64
	}
	err := s.conn(ctx).Model(&models.Product{}).
		Select("CASE WHEN stock <= 0 THEN 'out' WHEN stock <= 5 THEN 'low' WHEN stock <= 10 THEN 'medium' ELSE 'high' END AS level, COUNT(*) AS n").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("stock distribution: %w", err)
	}
	out := map[models.StockLevel]int64{
		models.StockOut: 0, models.StockLow: 0, models.StockMedium: 0, models.StockHigh: 0,
	}
	for _, r := range rows {
		out[models.StockLevel(r.Level)] = r.N
	}
	return out, nil
}

// InvoicesSince returns the headers issued on or after since, oldest first.
func (s *GormStore) InvoicesSince(ctx context.Context, since time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.conn(ctx).
		Select("id", "number", "client_id", "issue_date", "grand_total", "status").
		Where("issue_date >= ?", since).
		Order("issue_date").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("invoices since %s: %w", since.Format(time.DateOnly), err)
	}
	return invoices, nil
}

func (s *GormStore) TopClients(ctx context.Context, limit int) ([]ClientTotal, error) {
	var rows []struct {
		ClientID uint
		Name     string
		Invoices int64
		Total    decimal.Decimal
	}
	err := s.conn(ctx).Table("invoices").
		Select("invoices.client_id AS client_id, clients.name AS name, COUNT(invoices.id) AS invoices, SUM(invoices.grand_total) AS total").
		Joins("JOIN clients ON clients.id = invoices.client_id").
		Group("invoices.client_id, clients.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	out := make([]ClientTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClientTotal{ClientID: r.ClientID, Name: r.Name, Invoices: r.Invoices, Total: r.Total.Round(2)})
	}
	return out, nil
}
