package store

import (
	"context"

	"github.com/xelth-com/loadboard/internal/models"
	"gorm.io/gorm"
)

// Orders is the orders table
type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

// List returns orders in creation order. An empty profileID returns every order.
func (o *Orders) List(ctx context.Context, profileID string) ([]models.Order, error) {
	q := o.db.WithContext(ctx)
	if profileID != "" {
		q = q.Where("profile_id = ?", profileID)
	}
	var orders []models.Order
	if err := q.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (o *Orders) Create(ctx context.Context, order *models.Order) error {
	return o.db.WithContext(ctx).Create(order).Error
}

// Update replaces the editable fields of an order
func (o *Orders) Update(ctx context.Context, order *models.Order) error {
	res := o.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Select("destination", "time", "manifest_number", "transport_company", "trailer_type", "trailer_size", "products", "profile_id").
		Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (o *Orders) Delete(ctx context.Context, id string) error {
	res := o.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
