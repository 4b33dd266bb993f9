package models

import "time"

// Product is a catalog entry. Either code identifies the product.
type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"not null" json:"category" validate:"required"`
	RValue       string    `gorm:"column:r_value" json:"rValue"`
	NewCode      string    `gorm:"index" json:"newCode"`
	OldCode      string    `gorm:"index" json:"oldCode"`
	PacksPerBale int       `gorm:"not null" json:"packsPerBale" validate:"min=1"`
	Width        string    `json:"width,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Product) TableName() string { return "products" }
