package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ManualType classifies a product line that is not in the catalog
type ManualType string

const (
	ManualTypeBatt    ManualType = "Batt"
	ManualTypeRoll    ManualType = "Roll"
	ManualTypeBoard   ManualType = "Board"
	ManualTypePallet  ManualType = "Pallet"
	ManualTypeUnknown ManualType = "Unknown" // produced by manifest extraction
)

// ManualDetails is an operator- or AI-supplied classification for a code absent from the catalog
type ManualDetails struct {
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Type          ManualType `json:"type" validate:"required,oneof=Batt Roll Board Pallet Unknown"`
	PacksPerBale  *int       `json:"packsPerBale,omitempty" validate:"omitempty,min=1"`
	SecondaryCode string     `json:"secondaryCode,omitempty"`
}

// OrderLine is one product line of an order.
// Lines are stored as a JSON array on the order row, so the JSON shape is the persisted contract.
type OrderLine struct {
	ProductCode   string         `json:"productCode" validate:"required"`
	PacksOrdered  string         `json:"packsOrdered" validate:"required,numeric"`
	ManualDetails *ManualDetails `json:"manualDetails,omitempty"`
}

// Order is a delivery order with its product lines
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type Order struct {
	ID               string                        `gorm:"primaryKey;type:uuid" json:"id"`
	Destination      string                        `gorm:"not null;index" json:"destination" validate:"required"`
	Time             string                        `gorm:"not null;index" json:"time" validate:"required,hhmm"`
	ManifestNumber   string                        `gorm:"column:manifest_number" json:"manifestNumber,omitempty"`
	TransportCompany string                        `json:"transportCompany,omitempty"`
	TrailerType      string                        `json:"trailerType,omitempty"`
	TrailerSize      string                        `json:"trailerSize,omitempty"`
	Products         datatypes.JSONSlice[OrderLine] `gorm:"type:jsonb" json:"products" validate:"dive"`
	ProfileID        *string                       `gorm:"type:uuid;index" json:"profileId,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the order id when the caller did not
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// Key is the destination/time pair that scopes load sessions to this order
func (o Order) Key() string {
	return OrderKey(o.Destination, o.Time)
}

// OrderKey joins a destination and time the same way for orders and load sessions
func OrderKey(destination, time string) string {
	return destination + "_" + time
}
