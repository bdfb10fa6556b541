package cart

import (
	"fmt"
	"time"
)

// Coupon types.
const (
	CouponPercentage   = "percentage"
	CouponValue        = "value"
	CouponComparePrice = "comparePrice"
)

// CartCoupon is a validated discount rule. Percentage coupons carry a
// fraction in (0,1]; value coupons carry an absolute amount; comparePrice
// coupons carry no value of their own, the discount is derived from the
// item's compare price when applied.
type CartCoupon struct {
	Code  string  `json:"code"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`

	// Eligibility options. Zero means unset for the numeric fields.
	MinimumSpend float64    `json:"minimum_spend,omitempty"`
	MaximumSpend float64    `json:"maximum_spend,omitempty"`
	MaxDiscount  float64    `json:"max_discount,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	MinQty       float64    `json:"min_qty,omitempty"`

	UseLimit      int      `json:"use_limit,omitempty"`
	MultipleUse   bool     `json:"multiple_use,omitempty"`
	TotalUse      int      `json:"total_use,omitempty"`
	ValidProducts []string `json:"valid_products,omitempty"`

	// Status gates the coupon; new coupons start enabled.
	Status bool `json:"status"`
}

// NewCoupon validates and builds a coupon.
func NewCoupon(code string, value float64, couponType string) (*CartCoupon, error) {
	switch couponType {
	case CouponPercentage:
		if value <= 0 || value > 1 {
			return nil, &ValidationError{Msg: "Invalid value for a percentage coupon. The value must be between 0 and 1."}
		}
	case CouponValue:
		// any amount
	case CouponComparePrice:
		// derived at application time, never user supplied
		value = 0
	default:
		return nil, &ValidationError{Msg: `Invalid Coupon Type. Type should be "percentage", "value" or "comparePrice"`}
	}

	return &CartCoupon{
		Code:   code,
		Type:   couponType,
		Value:  value,
		Status: true,
	}, nil
}

// CanApply runs the eligibility predicates in their fixed order and returns
// a CouponError carrying the first failure's reason.
func (c *CartCoupon) CanApply(cart *Cart) error {
	if c.MinQty > 0 && cart.CartQty() < c.MinQty {
		return &CouponError{Reason: fmt.Sprintf("Minimum QTY of %v not Reached", c.MinQty)}
	}
	if !c.Status {
		return &CouponError{Reason: "Coupon Disabled"}
	}
	if c.MinimumSpend > 0 && cart.Total() < c.MinimumSpend {
		return &CouponError{Reason: "Minimum Spend not Reached"}
	}
	if c.StartDate != nil && time.Now().Before(*c.StartDate) {
		return &CouponError{Reason: "Coupon Not Valid"}
	}
	if c.EndDate != nil && time.Now().After(*c.EndDate) {
		return &CouponError{Reason: "Coupon Expired"}
	}
	return nil
}

// SatisfiesProductRestriction reports whether the coupon may attach to the
// given row. An empty ValidProducts list means no restriction.
func (c *CartCoupon) SatisfiesProductRestriction(rowID string) bool {
	if len(c.ValidProducts) == 0 {
		return true
	}
	for _, id := range c.ValidProducts {
		if id == rowID {
			return true
		}
	}
	return false
}

func (c *CartCoupon) HasMaxDiscount() bool { return c.MaxDiscount > 0 }
