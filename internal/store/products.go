package store

import (
	"context"
	"fmt"

	"github.com/xelth-com/loadboard/internal/models"
	"gorm.io/gorm"
)

// Products is the catalog table
type Products struct {
	db *gorm.DB
}

func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

func (p *Products) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := p.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ReplaceAll swaps the whole catalog in one transaction
func (p *Products) ReplaceAll(ctx context.Context, products []models.Product) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
		if len(products) == 0 {
			return nil
		}
		for i := range products {
			products[i].ID = 0
		}
		if err := tx.CreateInBatches(products, 200).Error; err != nil {
			return fmt.Errorf("failed to insert catalog: %w", err)
		}
		return nil
	})
}
