package models

import (
	"encoding/json"
	"time"

	"shopcart-backend/cart"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is the reference row a redeemable code is loaded from before it is
// applied to a cart. Eligibility extras (max discount, min qty, product
// restrictions) live in the Options JSON blob.
type Coupon struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`
	Type         string         `gorm:"not null" json:"type"`
	Value        float64        `gorm:"not null" json:"value"`
	MinimumSpend float64        `gorm:"default:0" json:"minimum_spend"`
	MaximumSpend float64        `gorm:"default:0" json:"maximum_spend"`
	StartDate    *time.Time     `json:"start_date"`
	EndDate      *time.Time     `json:"end_date"`
	UseLimit     int            `gorm:"default:0" json:"use_limit"`
	UseDevice    string         `json:"use_device"`
	MultipleUse  bool           `gorm:"default:false" json:"multiple_use"`
	TotalUse     int            `gorm:"default:0" json:"total_use"`
	Status       bool           `gorm:"default:true" json:"status"`
	Options      string         `gorm:"type:jsonb;default:'{}'" json:"options"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type couponOptions struct {
	MaxDiscount   float64  `json:"max_discount"`
	MinQty        float64  `json:"min_qty"`
	ValidProducts []string `json:"valid_products"`
}

// ToCartCoupon validates the row and builds the coupon the pricing engine
// works with.
func (c *Coupon) ToCartCoupon() (*cart.CartCoupon, error) {
	coupon, err := cart.NewCoupon(c.Code, c.Value, c.Type)
	if err != nil {
		return nil, err
	}

	coupon.MinimumSpend = c.MinimumSpend
	coupon.MaximumSpend = c.MaximumSpend
	coupon.StartDate = c.StartDate
	coupon.EndDate = c.EndDate
	coupon.UseLimit = c.UseLimit
	coupon.MultipleUse = c.MultipleUse
	coupon.TotalUse = c.TotalUse
	coupon.Status = c.Status

	if c.Options != "" {
		var opts couponOptions
		if err := json.Unmarshal([]byte(c.Options), &opts); err != nil {
			return nil, err
		}
		coupon.MaxDiscount = opts.MaxDiscount
		coupon.MinQty = opts.MinQty
		coupon.ValidProducts = opts.ValidProducts
	}

	return coupon, nil
}
