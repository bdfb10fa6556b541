package cart

import (
	"encoding/json"
	"math"
)

// Price is the monetary input for a new line item. Compare 0 means no
// compare price was supplied; one is derived from the configured multiplier.
type Price struct {
	Amount  float64
	Compare float64
}

// PriceOf wraps a bare amount.
func PriceOf(amount float64) Price { return Price{Amount: amount} }

// CartItem is a priced, quantified line entry. It carries its own applied
// coupons and tax rate and computes its own price, tax and totals under
// discount.
type CartItem struct {
	RowID string
	ID    string
	Name  string
	Qty   float64

	Taxable bool
	TaxRate float64
	Options Options
	IsSaved bool

	// price is the selling price; unitPrice is the displayed baseline it
	// is discounted from. They differ only after a compare-price coupon
	// promoted the baseline to the compare price.
	price        float64
	unitPrice    float64
	comparePrice float64
	promoted     bool

	coupons map[string]*CartCoupon

	modelRef      *ModelRef
	resolvedModel any
	resolved      bool

	cfg *Config
}

// NewItem validates input and builds a line item with quantity 1 and the
// configured default tax rate.
func NewItem(cfg *Config, id, name string, price Price, options Options) (*CartItem, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if id == "" {
		return nil, &ValidationError{Msg: "Please supply a valid identifier."}
	}
	if name == "" {
		return nil, &ValidationError{Msg: "Please supply a valid name."}
	}
	if math.IsNaN(price.Amount) || math.IsInf(price.Amount, 0) {
		return nil, &ValidationError{Msg: "Please supply a valid price."}
	}

	compare := price.Compare
	if compare == 0 {
		m := cfg.ComparePrice.DefaultMultiplier
		if math.IsNaN(m) || m < 1 {
			return nil, &ConfigError{Msg: "Please Check ComparePrice Multiplier."}
		}
		compare = price.Amount * m
	}

	return &CartItem{
		RowID:        GenerateRowID(id, options),
		ID:           id,
		Name:         name,
		Qty:          1,
		Taxable:      true,
		TaxRate:      cfg.TaxRate,
		Options:      options.clone(),
		price:        price.Amount,
		unitPrice:    price.Amount,
		comparePrice: compare,
		coupons:      make(map[string]*CartCoupon),
		cfg:          cfg,
	}, nil
}

// NewItemFromBuyable builds an item from a purchasable model's typed props
// and associates the model when it names its kind.
func NewItemFromBuyable(cfg *Config, b Buyable, options Options) (*CartItem, error) {
	props := b.BuyableProps()

	item, err := NewItem(cfg, props.ID, props.Name, Price{Amount: props.Price, Compare: props.ComparePrice}, options)
	if err != nil {
		return nil, err
	}

	item.Taxable = props.Taxable
	if props.TaxRate > 0 {
		item.TaxRate = props.TaxRate
	} else if !props.Taxable {
		item.TaxRate = 0
	}

	if k, ok := b.(BuyableKinder); ok {
		item.Associate(k.BuyableKind(), props.ID)
	}
	return item, nil
}

// SetQuantity replaces the quantity. Zero and NaN are rejected; negative
// values are allowed so update paths can fold into removal.
func (i *CartItem) SetQuantity(qty float64) error {
	if qty == 0 || math.IsNaN(qty) {
		return &ValidationError{Msg: "Please supply a valid quantity."}
	}
	i.Qty = qty
	return nil
}

// SetSaved flags the line as saved for later. Saved lines stay in the cart
// and keep pricing; the flag only travels with the serialized item.
func (i *CartItem) SetSaved(saved bool) *CartItem {
	i.IsSaved = saved
	return i
}

// SetTaxRate replaces the tax percent. A zero rate keeps the item taxable
// with zero tax, matching a taxed-at-zero line.
func (i *CartItem) SetTaxRate(rate float64) *CartItem {
	i.TaxRate = rate
	return i
}

// UnitPrice is the displayed price baseline: the selling price, or the
// compare price once a compare-price discount promoted it.
func (i *CartItem) UnitPrice() float64 { return i.unitPrice }

// Price returns the per-unit price without tax. With includeDiscount it nets
// the aggregate coupon discount, provided coupons are globally enabled.
func (i *CartItem) Price(includeDiscount bool) float64 {
	if !includeDiscount || len(i.coupons) == 0 || !i.cfg.Coupon.Enable {
		return i.unitPrice
	}
	return i.unitPrice * (1 - i.discountFraction())
}

// Tax returns the per-unit tax amount.
func (i *CartItem) Tax(includeDiscount bool) float64 {
	if !i.Taxable {
		return 0
	}
	return i.Price(includeDiscount) * i.TaxRate / 100
}

// PriceTax is the per-unit price including tax.
func (i *CartItem) PriceTax(includeDiscount bool) float64 {
	return i.Price(includeDiscount) + i.Tax(includeDiscount)
}

// Subtotal is the whole-line price without tax.
func (i *CartItem) Subtotal(includeDiscount bool) float64 {
	return i.Qty * i.Price(includeDiscount)
}

// Total is the whole-line price including tax.
func (i *CartItem) Total(includeDiscount bool) float64 {
	return i.Qty * i.PriceTax(includeDiscount)
}

// TaxTotal is the whole-line tax amount.
func (i *CartItem) TaxTotal(includeDiscount bool) float64 {
	return i.Tax(includeDiscount) * i.Qty
}

// LineDiscount is the difference between the undiscounted and discounted
// line totals.
func (i *CartItem) LineDiscount() float64 {
	return i.Total(false) - i.Total(true)
}

// ComparePriceValue returns the stored compare price when it beats the
// current price, falling back to the undiscounted price.
func (i *CartItem) ComparePriceValue() float64 {
	if i.comparePrice > i.Price(true) {
		return i.comparePrice
	}
	return i.Price(false)
}

// Discount is the current aggregate discount fraction in [0,1].
func (i *CartItem) Discount() float64 {
	if len(i.coupons) == 0 || !i.cfg.Coupon.Enable {
		return 0
	}
	return i.discountFraction()
}

// Coupons returns the applied coupons keyed by code.
func (i *CartItem) Coupons() map[string]*CartCoupon { return i.coupons }

// AddCoupon applies a coupon to this line. Cart-level eligibility is the
// caller's concern; only the product restriction is honored here. A
// comparePrice coupon with a compare price above the selling price turns
// into a synthetic percentage coupon and promotes the displayed baseline.
func (i *CartItem) AddCoupon(coupon *CartCoupon) {
	if !i.cfg.Coupon.AllowMultiple {
		i.resetCoupons()
	}
	if !coupon.SatisfiesProductRestriction(i.RowID) {
		return
	}

	if coupon.Type == CouponComparePrice {
		if i.comparePrice > i.price {
			i.unitPrice = i.comparePrice
			i.promoted = true
			i.coupons[coupon.Code] = &CartCoupon{
				Code:        coupon.Code,
				Type:        CouponPercentage,
				Value:       1 - i.price/i.comparePrice,
				MaxDiscount: coupon.MaxDiscount,
				Status:      true,
			}
		}
		return
	}

	i.coupons[coupon.Code] = coupon
}

// AddCouponOfType builds a coupon of the given type and applies it directly
// to this line.
func (i *CartItem) AddCouponOfType(couponType, code string, value float64) (*CartCoupon, error) {
	coupon, err := NewCoupon(code, value, couponType)
	if err != nil {
		return nil, err
	}
	i.AddCoupon(coupon)
	return coupon, nil
}

// ClearCoupons removes all applied coupons and restores the price baseline.
func (i *CartItem) ClearCoupons() { i.resetCoupons() }

func (i *CartItem) resetCoupons() {
	i.coupons = make(map[string]*CartCoupon)
	i.unitPrice = i.price
	i.promoted = false
}

// discountFraction sums the percentage coupon values, clamped so the
// expected discount never exceeds the smallest max-discount cap. The clamp
// is evaluated against current totals, so it holds when quantity changes
// after application.
func (i *CartItem) discountFraction() float64 {
	var d, limit float64
	for _, c := range i.coupons {
		if c.Type == CouponPercentage {
			d += c.Value
		}
		if c.HasMaxDiscount() && (limit == 0 || c.MaxDiscount < limit) {
			limit = c.MaxDiscount
		}
	}
	if limit > 0 {
		base := i.Total(false)
		if base > 0 && base*d > limit {
			d = limit / base
		}
	}
	return d
}

// Associate points this line at an external model by kind and identifier.
// Resolution is lazy and memoized per item instance.
func (i *CartItem) Associate(kind, id string) *CartItem {
	i.modelRef = &ModelRef{Kind: kind, ID: id}
	i.resolved = false
	i.resolvedModel = nil
	return i
}

// AssociatedModel returns the typed reference, nil when none.
func (i *CartItem) AssociatedModel() *ModelRef { return i.modelRef }

// Model resolves the associated model through the resolver, memoizing the
// result for the life of this item instance.
func (i *CartItem) Model(r ModelResolver) (any, error) {
	if i.modelRef == nil || r == nil {
		return nil, nil
	}
	if i.resolved {
		return i.resolvedModel, nil
	}
	model, err := r.FindModel(i.modelRef.Kind, i.modelRef.ID)
	if err != nil {
		return nil, err
	}
	i.resolvedModel = model
	i.resolved = true
	return model, nil
}

// setPrice replaces the selling price, keeping the displayed baseline in
// step unless a compare-price promotion owns it.
func (i *CartItem) setPrice(p float64) {
	i.price = p
	if !i.promoted {
		i.unitPrice = p
	}
}

// Format renders a monetary value with this item's pricing configuration.
func (i *CartItem) Format(v float64) string { return Format(v, i.cfg.Format) }

func (i *CartItem) attach(cfg *Config) {
	i.cfg = cfg
	if i.coupons == nil {
		i.coupons = make(map[string]*CartCoupon)
	}
}

type itemJSON struct {
	RowID        string                 `json:"rowId"`
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Qty          float64                `json:"qty"`
	Price        float64                `json:"price"`
	UnitPrice    float64                `json:"unitPrice"`
	ComparePrice float64                `json:"comparePrice"`
	Promoted     bool                   `json:"promoted,omitempty"`
	Taxable      bool                   `json:"taxable"`
	TaxRate      float64                `json:"taxRate"`
	Options      Options                `json:"options,omitempty"`
	IsSaved      bool                   `json:"isSaved"`
	Coupons      map[string]*CartCoupon `json:"coupons,omitempty"`
	Model        *ModelRef              `json:"model,omitempty"`
}

func (i *CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		RowID:        i.RowID,
		ID:           i.ID,
		Name:         i.Name,
		Qty:          i.Qty,
		Price:        i.price,
		UnitPrice:    i.unitPrice,
		ComparePrice: i.comparePrice,
		Promoted:     i.promoted,
		Taxable:      i.Taxable,
		TaxRate:      i.TaxRate,
		Options:      i.Options,
		IsSaved:      i.IsSaved,
		Coupons:      i.coupons,
		Model:        i.modelRef,
	})
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.RowID = raw.RowID
	i.ID = raw.ID
	i.Name = raw.Name
	i.Qty = raw.Qty
	i.price = raw.Price
	i.unitPrice = raw.UnitPrice
	i.comparePrice = raw.ComparePrice
	i.promoted = raw.Promoted
	i.Taxable = raw.Taxable
	i.TaxRate = raw.TaxRate
	i.Options = raw.Options
	i.IsSaved = raw.IsSaved
	i.coupons = raw.Coupons
	if i.coupons == nil {
		i.coupons = make(map[string]*CartCoupon)
	}
	i.modelRef = raw.Model
	i.cfg = DefaultConfig()
	return nil
}
