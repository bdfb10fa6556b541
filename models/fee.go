package models

import (
	"time"

	"shopcart-backend/cart"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fee is the reference row a named surcharge is loaded from.
type Fee struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Type      string         `gorm:"not null" json:"type"`
	Value     float64        `gorm:"not null" json:"value"`
	Taxable   bool           `gorm:"default:false" json:"taxable"`
	TaxRate   *float64       `json:"tax_rate"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (f *Fee) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ToCartFee validates the row and builds the fee the pricing engine works
// with.
func (f *Fee) ToCartFee() (*cart.CartFee, error) {
	fee, err := cart.NewFee(f.Name, f.Value, f.Type)
	if err != nil {
		return nil, err
	}
	fee.Taxable = f.Taxable
	fee.TaxRate = f.TaxRate
	return fee, nil
}
