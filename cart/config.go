package cart

// Config carries every knob the pricing engine reads. It is passed explicitly
// into constructors so the dual cart/item discount accounting stays testable
// in isolation.
type Config struct {
	// DefaultInstance is the cart namespace used when none is given.
	DefaultInstance string

	// TaxRate is the default tax percent applied to new items.
	TaxRate float64

	Coupon       CouponConfig
	Fee          FeeConfig
	ComparePrice ComparePriceConfig
	Format       FormatConfig
}

type CouponConfig struct {
	// Enable switches the whole coupon subsystem. When false, applied
	// coupons stay attached but all pricing ignores them.
	Enable bool

	// AllowMultiple permits stacking coupons. When false, applying a
	// coupon clears all previously applied ones first.
	AllowMultiple bool

	// AutoCoupons are attempted after every add. Eligibility failures are
	// swallowed; a coupon may become eligible as the cart grows.
	AutoCoupons []*CartCoupon
}

type FeeConfig struct {
	// DiscountedBase computes percentage fees against the taxed items
	// total net of the cart value discount. When false the fee base is
	// the pre-discount total.
	DiscountedBase bool

	// AutoFees are applied once the cart has content.
	AutoFees []*CartFee
}

type ComparePriceConfig struct {
	// DefaultMultiplier derives a compare price (price x multiplier) for
	// items added without one. Must be >= 1.
	DefaultMultiplier float64

	// Discount applies an automatic compare-price line discount to every
	// added item, under DiscountCode.
	Discount     bool
	DiscountCode string
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultInstance: "default",
		TaxRate:         21,
		Coupon: CouponConfig{
			Enable:        true,
			AllowMultiple: false,
		},
		Fee: FeeConfig{
			DiscountedBase: true,
		},
		ComparePrice: ComparePriceConfig{
			DefaultMultiplier: 1.5,
			Discount:          false,
			DiscountCode:      "hotdeal",
		},
		Format: FormatConfig{
			Decimals:          2,
			DecimalPoint:      ".",
			ThousandSeparator: ",",
		},
	}
}
