package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/facturacion/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts demo clients and products. Running it twice changes nothing.
func Seed(db *gorm.DB) error {
	clients := []models.Client{
		{Name: "Distribuidora Norte", Email: "compras@norte.example", Phone: "+34 910 000 001", Address: "Calle Mayor 1, Madrid"},
		{Name: "Café Central", Email: "admin@cafecentral.example", Phone: "+34 930 000 002", Address: "Passeig de Gràcia 10, Barcelona"},
	}
	for _, c := range clients {
		var existing models.Client
		err := db.Where("name = ?", c.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&c).Error; err != nil {
				return fmt.Errorf("seed client %s: %w", c.Name, err)
			}
		} else if err != nil {
			return err
		}
	}

	products := []models.Product{
		{Code: "CAF-001", Name: "Café en grano 1kg", UnitPrice: decimal.RequireFromString("14.50"), Stock: 40, TaxPercentage: decimal.NewFromInt(10)},
		{Code: "TAZ-002", Name: "Taza cerámica", UnitPrice: decimal.RequireFromString("6.90"), Stock: 8, TaxPercentage: decimal.NewFromInt(21)},
		{Code: "MOL-003", Name: "Molinillo manual", UnitPrice: decimal.RequireFromString("39.00"), Stock: 3, TaxPercentage: decimal.NewFromInt(21)},
	}
	for _, p := range products {
		var existing models.Product
		err := db.Where("code = ?", p.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&p).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Code, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
