package models

import (
	"time"

	"shopcart-backend/cart"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Price        float64        `gorm:"not null" json:"price"`
	ComparePrice float64        `gorm:"default:0" json:"compare_price"`
	Taxable      bool           `gorm:"default:true" json:"taxable"`
	TaxRate      float64        `gorm:"default:0" json:"tax_rate"`
	Stock        int            `gorm:"default:0" json:"stock"`
	Description  string         `json:"description"`
	Brand        string         `json:"brand"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BuyableProps exposes the product to the cart pricing engine.
func (p *Product) BuyableProps() cart.BuyableProps {
	return cart.BuyableProps{
		ID:           p.ID.String(),
		Name:         p.Name,
		Price:        p.Price,
		ComparePrice: p.ComparePrice,
		Taxable:      p.Taxable,
		TaxRate:      p.TaxRate,
	}
}

// BuyableKind names the model kind used for cart line associations.
func (p *Product) BuyableKind() string { return "product" }
